package artifact

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/sensor"
)

// Consumer receives every measurement result after it has been written
// to disk. It is the seam a future telemetry shipper or DSP/FFT process
// could implement; per spec.md's Non-goals this module ships only the
// LoggingConsumer default below.
type Consumer interface {
	ConsumeAudio(meta AudioMeta, res sensor.AudioResult, filename string)
	ConsumeEnv(sensorID protocol.SensorId, ts time.Time, reading protocol.EnvReading, filename string)
	ConsumeTof(sensorID protocol.SensorId, ts time.Time, ns []uint32, filename string)
}

// LoggingConsumer just logs each result at debug level. It is the
// default Consumer wired in cmd/plensor-gatewayd.
type LoggingConsumer struct {
	Logger *log.Logger
}

func (c LoggingConsumer) ConsumeAudio(meta AudioMeta, res sensor.AudioResult, filename string) {
	c.Logger.Debug("audio artifact written", "sensor", meta.SensorID, "file", filename, "status", res.Status.String())
}

func (c LoggingConsumer) ConsumeEnv(sensorID protocol.SensorId, ts time.Time, reading protocol.EnvReading, filename string) {
	c.Logger.Debug("env artifact written", "sensor", sensorID, "file", filename)
}

func (c LoggingConsumer) ConsumeTof(sensorID protocol.SensorId, ts time.Time, ns []uint32, filename string) {
	c.Logger.Debug("tof artifact written", "sensor", sensorID, "file", filename, "count", len(ns))
}
