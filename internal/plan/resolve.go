package plan

import "github.com/plense/plensor-gateway/internal/protocol"

// Resolve builds the effective Params for command name on sensorID,
// merging three tiers in ascending precedence: the compiled fallback,
// the document's command-level measurement_settings entry, then the
// document's sensor_specific_settings entry for sensorID. This mirrors
// sensor.py's _get_damping_level resolution order, generalized to every
// parameterized command.
func Resolve(doc Document, sensorID protocol.SensorId, name string) protocol.Params {
	p := compiledDefaults[name]
	applyOverride(&p, doc.MeasurementSettings[name])
	if perSensor, ok := doc.SensorSpecificSettings[sensorID]; ok {
		applyOverride(&p, perSensor[name])
	}
	return p
}

func applyOverride(p *protocol.Params, o ParamOverrides) {
	if o.DurationUS != nil {
		p.DurationUS = *o.DurationUS
	}
	if o.StartFreqHz != nil {
		p.StartFreqHz = *o.StartFreqHz
	}
	if o.StopFreqHz != nil {
		p.StopFreqHz = *o.StopFreqHz
	}
	if o.Repetitions != nil {
		p.Repetitions = *o.Repetitions
	}
	if o.Damping != nil {
		p.Damping = *o.Damping
	}
	if o.TimeoutUS != nil {
		p.TimeoutUS = *o.TimeoutUS
	}
	if o.HalfPeriods != nil {
		p.HalfPeriods = *o.HalfPeriods
	}
}
