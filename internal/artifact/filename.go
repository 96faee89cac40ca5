// Package artifact derives deterministic filenames from measurement
// metadata and persists results to the data root, split by modality.
package artifact

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/plense/plensor-gateway/internal/protocol"
)

// timestampPattern matches spec.md §4.7's <YYYY-MM-DD>T<HHMMSS> tag.
const timestampPattern = "%Y-%m-%dT%H%M%S"

func timestamp(ts time.Time) string {
	s, err := strftime.Format(timestampPattern, ts)
	if err != nil {
		// timestampPattern is a compile-time constant; a failure here
		// means the pattern itself is broken, not the input time.
		panic("artifact: invalid timestamp pattern: " + err.Error())
	}
	return s
}

// AudioCommand distinguishes the two audio verbs that share a filename
// template, differing only in the <cmd1> tag.
type AudioCommand byte

const (
	AudioBlock AudioCommand = 'B'
	AudioSine  AudioCommand = 'S'
)

// AudioMeta carries every field the audio filename template consumes.
type AudioMeta struct {
	Command     AudioCommand
	StartFreqHz uint32
	StopFreqHz  uint32
	Damping     int
	DurationUS  uint16
	Repetitions int
	SensorID    protocol.SensorId
	Timestamp   time.Time
}

// AudioFilename builds <start5><cmd1><stop5>l<dmp3>d<dur2>r<rep3>#<sid5>_<ts>.flac.
func AudioFilename(m AudioMeta) string {
	return fmt.Sprintf("%05d%c%05dl%03dd%02dr%03d#%05d_%s.flac",
		m.StartFreqHz/10,
		byte(m.Command),
		m.StopFreqHz/10,
		m.Damping,
		m.DurationUS/1000,
		m.Repetitions,
		m.SensorID,
		timestamp(m.Timestamp),
	)
}

// EnvFilename builds ENV#<sid5>_<ts>.json.
func EnvFilename(sensorID protocol.SensorId, ts time.Time) string {
	return fmt.Sprintf("ENV#%05d_%s.json", sensorID, timestamp(ts))
}

// TofBlockFilename builds TOF_BLOCKh<half3>r<rep3>l<dmp3>#<sid5>_<ts>.json.
func TofBlockFilename(halfPeriods uint8, repetitions, damping int, sensorID protocol.SensorId, ts time.Time) string {
	return fmt.Sprintf("TOF_BLOCKh%03dr%03dl%03d#%05d_%s.json",
		halfPeriods, repetitions, damping, sensorID, timestamp(ts))
}

// TofImpulseFilename mirrors TofBlockFilename for the impulse variant,
// which has no half_periods parameter, following spec.md §4.7's TOF
// naming family (no literal template is given for impulse; this
// extrapolates from the block template minus the field the impulse
// command doesn't carry).
func TofImpulseFilename(repetitions int, sensorID protocol.SensorId, ts time.Time) string {
	return fmt.Sprintf("TOF_IMPULSEr%03d#%05d_%s.json", repetitions, sensorID, timestamp(ts))
}
