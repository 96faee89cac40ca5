package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
sensors: [1, 2, 7]
measurement_interval: 120
default_measurement_sequence: [set_damping, measure_block, measure_env]
measurement_settings:
  measure_block:
    duration_us: 40000
    repetitions: 8
  set_damping:
    damping: 3
sensor_specific_settings:
  7:
    set_damping:
      damping: 20
measurement_plans:
  nightly:
    sensors: [1, 2]
    sequence: [measure_tof_block]
    interval: 3600
    output_folder: nightly
metadata:
  pi_id: rpi-04
  customer_id: acme
`

func writePlan(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesDocument(t *testing.T) {
	dir := t.TempDir()
	path := writePlan(t, dir, "plan.yaml", sampleYAML)

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, doc.MeasurementIntervalS)
	assert.Equal(t, []string{"set_damping", "measure_block", "measure_env"}, doc.DefaultSequence)
	assert.Equal(t, "rpi-04", doc.Metadata["pi_id"])
	sub, ok := doc.MeasurementPlans["nightly"]
	require.True(t, ok)
	assert.Equal(t, 3600, sub.IntervalS)
}

func TestLoadRejectsIncompleteDocument(t *testing.T) {
	dir := t.TempDir()
	path := writePlan(t, dir, "plan.yaml", "measurement_interval: 60\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
