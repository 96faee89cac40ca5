package protocol

import (
	"encoding/binary"
	"fmt"
)

// EnvReading is the decoded payload of a measure-env response: four
// big-endian 16-bit fields scaled by 1/100 to degrees Celsius / percent
// relative humidity.
type EnvReading struct {
	InsideTempC    float64
	InsideHumPct   float64
	OutsideTempC   float64
	OutsideHumPct  float64
}

// DecodeAudio decodes a sequence of signed 16-bit big-endian samples.
func DecodeAudio(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrOddAudioLength, len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.BigEndian.Uint16(data[2*i:]))
	}
	return samples, nil
}

// DecodeEnv decodes an 8-byte env response into four scaled readings.
func DecodeEnv(data []byte) (EnvReading, error) {
	if len(data) != 8 {
		return EnvReading{}, fmt.Errorf("%w: got %d bytes", ErrBadEnvLength, len(data))
	}
	scale := func(off int) float64 {
		return float64(int16(binary.BigEndian.Uint16(data[off:]))) / 100
	}
	return EnvReading{
		InsideTempC:   scale(0),
		InsideHumPct:  scale(2),
		OutsideTempC:  scale(4),
		OutsideHumPct: scale(6),
	}, nil
}

// DecodeTOF decodes a 4-byte big-endian nanosecond count.
func DecodeTOF(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: got %d bytes", ErrBadTOFLength, len(data))
	}
	return binary.BigEndian.Uint32(data), nil
}
