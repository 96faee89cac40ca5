package plan

import (
	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/queue"
)

// Seed builds one queue.Message per (sensor, sequence item) pair, in
// sequence order within each sensor, for every id in sensors. Parameters
// are resolved per Resolve. Used both for the default plan's periodic
// seeding and for each measurement_plans sub-plan's own cadence.
func Seed(doc Document, sensors []protocol.SensorId, sequence []string) ([]queue.Message, error) {
	msgs := make([]queue.Message, 0, len(sensors)*len(sequence))
	for _, id := range sensors {
		for _, name := range sequence {
			kind, err := KindForName(name)
			if err != nil {
				return nil, err
			}
			params := Resolve(doc, id, name)
			msgs = append(msgs, queue.Message{
				Target: id,
				Origin: queue.OriginPeriodic,
				Command: protocol.Command{
					Kind:   kind,
					Target: id,
					Params: params,
				},
			})
		}
	}
	return msgs, nil
}

// SeedDefault seeds every responsive sensor in doc.Sensors (intersected
// with responsive) using doc.DefaultSequence.
func SeedDefault(doc Document, responsive []protocol.SensorId) ([]queue.Message, error) {
	active := intersect(doc.Sensors, responsive)
	return Seed(doc, active, doc.DefaultSequence)
}

// SeedSubPlan seeds a named measurement_plans entry the same way, scoped
// to its own sensor list intersected with responsive.
func SeedSubPlan(doc Document, sub SubPlan, responsive []protocol.SensorId) ([]queue.Message, error) {
	active := intersect(sub.Sensors, responsive)
	return Seed(doc, active, sub.Sequence)
}

func intersect(ids, responsive []protocol.SensorId) []protocol.SensorId {
	set := make(map[protocol.SensorId]bool, len(responsive))
	for _, id := range responsive {
		set[id] = true
	}
	out := make([]protocol.SensorId, 0, len(ids))
	for _, id := range ids {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
