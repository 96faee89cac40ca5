// Package sensor implements the per-sensor actor: identity, firmware
// variant, damping state, liveness, and the command verbs a plensor
// exposes over the bus.
package sensor

import (
	"context"
	"time"

	"github.com/plense/plensor-gateway/internal/protocol"
)

// Bus is the subset of the transport a Sensor needs: one blocking
// request/response exchange. internal/transport.Transport satisfies this
// structurally.
type Bus interface {
	Exchange(ctx context.Context, frame []byte, timeout time.Duration) ([]byte, error)
}

// Sensor is the live state of one plensor. It is created at configuration
// load and destroyed when its id disappears from the active set.
type Sensor struct {
	ID             protocol.SensorId
	Variant        protocol.FirmwareVariant
	Damping        int // most recently accepted value, or DefaultDamping
	DefaultDamping int
	Responsive     bool
}

// New creates a Sensor in its initial, unprobed state: responsive until
// proven otherwise, damping at the configured default.
func New(id protocol.SensorId, variant protocol.FirmwareVariant, defaultDamping int) *Sensor {
	return &Sensor{
		ID:             id,
		Variant:        variant,
		Damping:        defaultDamping,
		DefaultDamping: defaultDamping,
		Responsive:     true,
	}
}

// VerbOutcome classifies the result of a verb that has no measurement
// payload (probe, calibrate, set-damping, reset).
type VerbOutcome int

const (
	VerbOK VerbOutcome = iota
	VerbNoResponse
	VerbNak
)

func (o VerbOutcome) String() string {
	switch o {
	case VerbOK:
		return "ok"
	case VerbNoResponse:
		return "no-response"
	case VerbNak:
		return "nak"
	default:
		return "unknown"
	}
}

// MeasureStatus classifies the result of a retried, multi-repetition
// measurement.
type MeasureStatus int

const (
	MeasureOK MeasureStatus = iota
	MeasurePartial
	MeasureFailed
)

func (s MeasureStatus) String() string {
	switch s {
	case MeasureOK:
		return "ok"
	case MeasurePartial:
		return "partial"
	case MeasureFailed:
		return "failed"
	default:
		return "unknown"
	}
}
