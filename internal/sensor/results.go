package sensor

import "github.com/plense/plensor-gateway/internal/protocol"

// AudioRateHz is the fixed sample rate of every block/sine measurement.
const AudioRateHz = 500000

// AudioResult is the outcome of measure-block or measure-sine.
type AudioResult struct {
	Status  MeasureStatus
	Samples []int16
	RateHz  int
}

// EnvResult is the outcome of measure-env.
type EnvResult struct {
	Status  MeasureStatus
	Reading protocol.EnvReading
}

// TofResult is the outcome of measure-tof-impulse or measure-tof-block.
type TofResult struct {
	Status MeasureStatus
	NS     []uint32
}
