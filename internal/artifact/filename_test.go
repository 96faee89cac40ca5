package artifact

import (
	"testing"
	"time"

	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestAudioFilenameMatchesSpecExample(t *testing.T) {
	ts := time.Date(2024, 1, 15, 12, 30, 45, 0, time.UTC)
	got := AudioFilename(AudioMeta{
		Command:     AudioBlock,
		StartFreqHz: 20000,
		StopFreqHz:  100000,
		Damping:     200,
		DurationUS:  50000,
		Repetitions: 2,
		SensorID:    7,
		Timestamp:   ts,
	})
	assert.Equal(t, "02000B10000l200d50r002#00007_2024-01-15T123045.flac", got)
}

func TestEnvFilename(t *testing.T) {
	ts := time.Date(2024, 1, 15, 12, 30, 45, 0, time.UTC)
	got := EnvFilename(protocol.SensorId(7), ts)
	assert.Equal(t, "ENV#00007_2024-01-15T123045.json", got)
}

func TestTofBlockFilename(t *testing.T) {
	ts := time.Date(2024, 1, 15, 12, 30, 45, 0, time.UTC)
	got := TofBlockFilename(4, 5, 10, protocol.SensorId(3), ts)
	assert.Equal(t, "TOF_BLOCKh004r005l010#00003_2024-01-15T123045.json", got)
}
