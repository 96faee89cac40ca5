// Package plan loads the declarative measurement plan document, resolves
// per-sensor parameter overrides, and seeds the queue from it.
package plan

import (
	"fmt"
	"os"

	"github.com/plense/plensor-gateway/internal/protocol"
	"gopkg.in/yaml.v3"
)

// ParamOverrides is a sparse set of command parameters; a nil field means
// "not specified at this level" and resolution falls through to the next
// precedence tier.
type ParamOverrides struct {
	DurationUS  *uint16 `yaml:"duration_us,omitempty"`
	StartFreqHz *uint32 `yaml:"start_freq_hz,omitempty"`
	StopFreqHz  *uint32 `yaml:"stop_freq_hz,omitempty"`
	Repetitions *int    `yaml:"repetitions,omitempty"`
	Damping     *int    `yaml:"damping,omitempty"`
	TimeoutUS   *uint16 `yaml:"timeout_us,omitempty"`
	HalfPeriods *uint8  `yaml:"half_periods,omitempty"`
}

// SubPlan is one named entry in measurement_plans: a sensor set and
// sequence that runs on its own cadence, independent of the default plan.
type SubPlan struct {
	Sensors      []protocol.SensorId `yaml:"sensors"`
	Sequence     []string            `yaml:"sequence"`
	IntervalS    int                 `yaml:"interval"`
	OutputFolder string              `yaml:"output_folder"`
}

// Document is the on-disk declarative plan, the C6 configuration format
// from spec §4.6.
type Document struct {
	Sensors                []protocol.SensorId                        `yaml:"sensors"`
	MeasurementIntervalS   int                                         `yaml:"measurement_interval"`
	DefaultSequence        []string                                    `yaml:"default_measurement_sequence"`
	MeasurementSettings    map[string]ParamOverrides                   `yaml:"measurement_settings"`
	SensorSpecificSettings map[protocol.SensorId]map[string]ParamOverrides `yaml:"sensor_specific_settings"`
	MeasurementPlans       map[string]SubPlan                          `yaml:"measurement_plans"`

	// SensorVariants names each sensor's firmware generation ("v3",
	// "v4", "v5"); unlisted sensors default to v5. spec.md's Sensor type
	// requires a FirmwareVariant but its plan-document table (§4.6) is
	// silent on where it's configured, so this carries it alongside the
	// other per-sensor settings.
	SensorVariants map[protocol.SensorId]string `yaml:"sensor_variants"`

	// Metadata is operator bookkeeping (pi_id, customer_id, deployment
	// id, ...) passed through to the artifact writer unchanged. The core
	// never interprets these keys.
	Metadata map[string]string `yaml:"metadata"`
}

// VariantForSensor resolves id's firmware variant, defaulting to V5 when
// the document doesn't name it.
func VariantForSensor(doc Document, id protocol.SensorId) protocol.FirmwareVariant {
	switch doc.SensorVariants[id] {
	case "v3", "V3":
		return protocol.VariantV3
	case "v4", "V4":
		return protocol.VariantV4
	default:
		return protocol.VariantV5
	}
}

// Load reads and parses the plan document at path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("plan: read %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("plan: parse %s: %w", path, err)
	}
	if len(doc.Sensors) == 0 || len(doc.DefaultSequence) == 0 {
		return Document{}, fmt.Errorf("plan: %s: %w", path, ErrIncomplete)
	}
	return doc, nil
}
