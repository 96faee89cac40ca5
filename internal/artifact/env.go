package artifact

import (
	"encoding/json"
	"time"

	"github.com/plense/plensor-gateway/internal/protocol"
)

// EnvRecord is the JSON payload written for an environment reading. The
// metadata map carries operator bookkeeping stanzas (pi_id, customer_id,
// ...) through unchanged — see SPEC_FULL.md's supplemented-features
// note; the core never interprets these keys.
type EnvRecord struct {
	SensorID  protocol.SensorId    `json:"sensor_id"`
	Timestamp string               `json:"timestamp"`
	Reading   protocol.EnvReading  `json:"reading"`
	Metadata  map[string]string    `json:"metadata,omitempty"`
}

// WriteEnv persists an environment reading under environment/ and
// returns the filename it wrote.
func (r Root) WriteEnv(sensorID protocol.SensorId, ts time.Time, reading protocol.EnvReading, metadata map[string]string) (string, error) {
	name := EnvFilename(sensorID, ts)
	rec := EnvRecord{SensorID: sensorID, Timestamp: timestamp(ts), Reading: reading, Metadata: metadata}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := writeAtomic(r.path("environment", name), data); err != nil {
		return "", err
	}
	return name, nil
}
