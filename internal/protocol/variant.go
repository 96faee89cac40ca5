package protocol

// FirmwareVariant selects a device generation's damping encoding.
type FirmwareVariant int

const (
	VariantV3 FirmwareVariant = iota
	VariantV4
	VariantV5
)

func (v FirmwareVariant) String() string {
	switch v {
	case VariantV3:
		return "v3"
	case VariantV4:
		return "v4"
	case VariantV5:
		return "v5"
	default:
		return "unknown"
	}
}

// legacyDampingWidthMax is the sensor id above which a V4 device expects
// two damping bytes instead of one. This one-byte-below/two-byte-above
// split is an artifact of an early firmware revision and applies only to
// V4 hardware.
const legacyDampingWidthMax = 68

// EncodeDamping renders the set-damping parameter for target according to
// variant's rules:
//
//   - V3 ignores damping entirely and contributes no bytes.
//   - V4 accepts {0,1,2,3}, clamping anything else to 0, encoded in one
//     byte for ids <= 68 and two bytes above that (a legacy exception).
//   - V5 accepts [0,257], clamping anything else to 0, encoded in two
//     bytes.
func EncodeDamping(variant FirmwareVariant, target SensorId, level int) ([]byte, error) {
	level = ClampDamping(variant, level)
	switch variant {
	case VariantV3:
		return nil, nil
	case VariantV4:
		width := 1
		if target > legacyDampingWidthMax {
			width = 2
		}
		return encodeUintWidth(level, width), nil
	case VariantV5:
		return encodeUintWidth(level, 2), nil
	default:
		return encodeUintWidth(0, 2), nil
	}
}

// ClampDamping applies each variant's valid range, clamping out-of-range
// values to zero. V3 has no notion of damping, so any value passes
// through unchanged (it is never transmitted).
func ClampDamping(variant FirmwareVariant, level int) int {
	switch variant {
	case VariantV4:
		if level < 0 || level > 3 {
			return 0
		}
		return level
	case VariantV5:
		if level < 0 || level > 257 {
			return 0
		}
		return level
	default:
		return level
	}
}

func encodeUintWidth(v, width int) []byte {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	return buf
}
