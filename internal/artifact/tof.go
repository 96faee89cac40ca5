package artifact

import (
	"encoding/json"
	"time"

	"github.com/plense/plensor-gateway/internal/protocol"
)

// TofRecord is the JSON payload written for a TOF measurement: the list
// of nanosecond values in chronological order, per spec.md §4.7.
type TofRecord struct {
	SensorID  protocol.SensorId `json:"sensor_id"`
	Timestamp string            `json:"timestamp"`
	NS        []uint32          `json:"ns"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// WriteTofBlock persists a TOF-block result under tof/.
func (r Root) WriteTofBlock(halfPeriods uint8, repetitions, damping int, sensorID protocol.SensorId, ts time.Time, ns []uint32, metadata map[string]string) (string, error) {
	name := TofBlockFilename(halfPeriods, repetitions, damping, sensorID, ts)
	return r.writeTof(name, sensorID, ts, ns, metadata)
}

// WriteTofImpulse persists a TOF-impulse result under tof/.
func (r Root) WriteTofImpulse(repetitions int, sensorID protocol.SensorId, ts time.Time, ns []uint32, metadata map[string]string) (string, error) {
	name := TofImpulseFilename(repetitions, sensorID, ts)
	return r.writeTof(name, sensorID, ts, ns, metadata)
}

func (r Root) writeTof(name string, sensorID protocol.SensorId, ts time.Time, ns []uint32, metadata map[string]string) (string, error) {
	rec := TofRecord{SensorID: sensorID, Timestamp: timestamp(ts), NS: ns, Metadata: metadata}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := writeAtomic(r.path("tof", name), data); err != nil {
		return "", err
	}
	return name, nil
}
