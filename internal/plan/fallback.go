package plan

import "github.com/plense/plensor-gateway/internal/protocol"

// FallbackSequence is the compiled-in sequence used when the plan
// document is missing or fails to parse: a set-damping step, a 50 ms
// block sweep across 20-100 kHz for 10 repetitions, then an environment
// reading. Grounded
// on queue_manager.py's initialize_measurement_queue fallback in
// original_source/.
var FallbackSequence = []string{NameSetDamping, NameMeasureBlock, NameMeasureEnv}

// compiledDefaults are the last-resort parameters for each command,
// used when neither a sensor-specific nor a command-level override
// supplies a value. These are the bottom tier of the three-tier
// precedence plan.Resolve implements (sensor override > command default
// > compiled fallback).
var compiledDefaults = map[string]protocol.Params{
	NameSetDamping: {Damping: 5},
	NameMeasureBlock: {
		DurationUS:  50000,
		StartFreqHz: 20000,
		StopFreqHz:  100000,
		Repetitions: 10,
		Damping:     5,
	},
	NameMeasureSine: {
		DurationUS:  50000,
		StartFreqHz: 20000,
		StopFreqHz:  100000,
		Repetitions: 10,
		Damping:     5,
	},
	NameMeasureEnv: {},
	NameMeasureTofImp: {
		TimeoutUS:   10000,
		Repetitions: 5,
		HalfPeriods: 1,
	},
	NameMeasureTofBlk: {
		TimeoutUS:   10000,
		Repetitions: 5,
	},
	NameProbe:     {},
	NameCalibrate: {},
	NameReset:     {},
}

// FallbackDocument builds the compiled-in Document used when Load fails:
// every sensor in ids runs FallbackSequence on a 300s cadence.
func FallbackDocument(ids []protocol.SensorId) Document {
	return Document{
		Sensors:              ids,
		MeasurementIntervalS: 300,
		DefaultSequence:      FallbackSequence,
	}
}
