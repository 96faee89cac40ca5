package protocol

import "fmt"

// Opcode is the first byte of an outgoing command payload.
type Opcode byte

const (
	OpProbe      Opcode = 0x5B
	OpSine       Opcode = 0x5C
	OpTofImpulse Opcode = 0x5D
	OpBlock      Opcode = 0x5E
	OpEnv        Opcode = 0x5F
	OpCalibrate  Opcode = 0x60
	OpSetID      Opcode = 0x61
	OpReset      Opcode = 0x62
	OpSetDamping Opcode = 0x63
	OpTofBlock   Opcode = 0x64
)

// Kind names the command verbs a Sensor exposes, independent of their
// wire opcode.
type Kind int

const (
	KindProbe Kind = iota
	KindCalibrate
	KindSetDamping
	KindMeasureBlock
	KindMeasureSine
	KindMeasureEnv
	KindMeasureTofImpulse
	KindMeasureTofBlock
	KindReset
	KindSetID
)

func (k Kind) String() string {
	switch k {
	case KindProbe:
		return "probe"
	case KindCalibrate:
		return "calibrate"
	case KindSetDamping:
		return "set-damping"
	case KindMeasureBlock:
		return "measure-block"
	case KindMeasureSine:
		return "measure-sine"
	case KindMeasureEnv:
		return "measure-env"
	case KindMeasureTofImpulse:
		return "measure-tof-impulse"
	case KindMeasureTofBlock:
		return "measure-tof-block"
	case KindReset:
		return "reset"
	case KindSetID:
		return "set-id"
	default:
		return "unknown"
	}
}

// Params carries every field any command might need; which fields apply
// depends on Kind (see the data model this implements).
type Params struct {
	DurationUS  uint16
	StartFreqHz uint32 // 24-bit on the wire
	StopFreqHz  uint32 // 24-bit on the wire
	Repetitions int
	Damping     int
	TimeoutUS   uint16
	HalfPeriods uint8
}

// Command is one command to encode onto the bus. Target is the sensor the
// frame will be addressed to; it's also an input to damping encoding,
// whose byte width depends on the target id for V4 devices.
type Command struct {
	Kind    Kind
	Params  Params
	NewID   SensorId // only for KindSetID
	Target  SensorId
	Variant FirmwareVariant
}

// EncodePayload renders the command-specific payload (opcode plus any
// parameters), ready to hand to Encode alongside cmd.Target.
func EncodePayload(cmd Command) ([]byte, error) {
	switch cmd.Kind {
	case KindProbe:
		return []byte{byte(OpProbe)}, nil
	case KindCalibrate:
		return []byte{byte(OpCalibrate)}, nil
	case KindMeasureEnv:
		return []byte{byte(OpEnv)}, nil
	case KindReset:
		return []byte{byte(OpReset)}, nil
	case KindSetID:
		buf := []byte{byte(OpSetID)}
		buf = appendUint24(buf, uint32(cmd.NewID))
		return buf, nil
	case KindSetDamping:
		encoded, err := EncodeDamping(cmd.Variant, cmd.Target, cmd.Params.Damping)
		if err != nil {
			return nil, err
		}
		buf := []byte{byte(OpSetDamping)}
		return append(buf, encoded...), nil
	case KindMeasureSine:
		return encodeSineBlock(OpSine, cmd.Params)
	case KindMeasureBlock:
		return encodeSineBlock(OpBlock, cmd.Params)
	case KindMeasureTofImpulse:
		buf := []byte{byte(OpTofImpulse)}
		buf = appendUint16(buf, cmd.Params.TimeoutUS)
		buf = append(buf, 0x00)
		return buf, nil
	case KindMeasureTofBlock:
		buf := []byte{byte(OpTofBlock)}
		buf = appendUint16(buf, cmd.Params.TimeoutUS)
		buf = append(buf, cmd.Params.HalfPeriods)
		return buf, nil
	default:
		return nil, fmt.Errorf("protocol: unknown command kind %v", cmd.Kind)
	}
}

func encodeSineBlock(op Opcode, p Params) ([]byte, error) {
	if p.StartFreqHz > 0xFFFFFF || p.StopFreqHz > 0xFFFFFF {
		return nil, fmt.Errorf("protocol: frequency exceeds 24 bits (start=%d stop=%d)", p.StartFreqHz, p.StopFreqHz)
	}
	buf := []byte{byte(op)}
	buf = appendUint24(buf, p.StartFreqHz)
	buf = appendUint24(buf, p.StopFreqHz)
	buf = appendUint16(buf, p.DurationUS)
	return buf, nil
}

// DecodeCommand parses a previously-encoded outgoing payload back into a
// Command. variant and target must match what the payload was encoded
// with, since neither is recoverable from a set-damping payload alone.
func DecodeCommand(payload []byte, variant FirmwareVariant, target SensorId) (Command, error) {
	if len(payload) == 0 {
		return Command{}, fmt.Errorf("protocol: empty command payload")
	}
	op := Opcode(payload[0])
	rest := payload[1:]
	base := Command{Target: target, Variant: variant}
	switch op {
	case OpProbe:
		if len(rest) != 0 {
			return Command{}, fmt.Errorf("protocol: probe payload has trailing bytes")
		}
		base.Kind = KindProbe
	case OpCalibrate:
		if len(rest) != 0 {
			return Command{}, fmt.Errorf("protocol: calibrate payload has trailing bytes")
		}
		base.Kind = KindCalibrate
	case OpEnv:
		if len(rest) != 0 {
			return Command{}, fmt.Errorf("protocol: env payload has trailing bytes")
		}
		base.Kind = KindMeasureEnv
	case OpReset:
		if len(rest) != 0 {
			return Command{}, fmt.Errorf("protocol: reset payload has trailing bytes")
		}
		base.Kind = KindReset
	case OpSetID:
		if len(rest) != 3 {
			return Command{}, fmt.Errorf("protocol: set-id payload must be 3 bytes, got %d", len(rest))
		}
		base.Kind = KindSetID
		base.NewID = SensorId(uint24(rest))
	case OpSetDamping:
		base.Kind = KindSetDamping
		base.Params.Damping = decodeUintWidth(rest)
	case OpSine, OpBlock:
		if len(rest) != 8 {
			return Command{}, fmt.Errorf("protocol: sine/block payload must be 8 bytes, got %d", len(rest))
		}
		if op == OpSine {
			base.Kind = KindMeasureSine
		} else {
			base.Kind = KindMeasureBlock
		}
		base.Params.StartFreqHz = uint24(rest[0:3])
		base.Params.StopFreqHz = uint24(rest[3:6])
		base.Params.DurationUS = uint16(rest[6])<<8 | uint16(rest[7])
	case OpTofImpulse:
		if len(rest) != 3 || rest[2] != 0x00 {
			return Command{}, fmt.Errorf("protocol: tof-impulse payload malformed")
		}
		base.Kind = KindMeasureTofImpulse
		base.Params.TimeoutUS = uint16(rest[0])<<8 | uint16(rest[1])
	case OpTofBlock:
		if len(rest) != 3 {
			return Command{}, fmt.Errorf("protocol: tof-block payload must be 3 bytes, got %d", len(rest))
		}
		base.Kind = KindMeasureTofBlock
		base.Params.TimeoutUS = uint16(rest[0])<<8 | uint16(rest[1])
		base.Params.HalfPeriods = rest[2]
	default:
		return Command{}, fmt.Errorf("protocol: unknown opcode 0x%02X", byte(op))
	}
	return base, nil
}

func decodeUintWidth(buf []byte) int {
	v := 0
	for _, b := range buf {
		v = v<<8 | int(b)
	}
	return v
}
