package plan

import (
	"testing"

	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAppliesThreeTierPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writePlan(t, dir, "plan.yaml", sampleYAML)
	doc, err := Load(path)
	require.NoError(t, err)

	// sensor 1 has no override: command-level damping (3) wins over the
	// compiled fallback (5).
	p1 := Resolve(doc, 1, NameSetDamping)
	assert.Equal(t, 3, p1.Damping)

	// sensor 7 has a sensor-specific override (20) that beats the
	// command-level default.
	p7 := Resolve(doc, 7, NameSetDamping)
	assert.Equal(t, 20, p7.Damping)

	// measure_block duration_us/repetitions overridden at command level;
	// unset fields (StartFreqHz/StopFreqHz) still fall back compiled.
	block := Resolve(doc, 1, NameMeasureBlock)
	assert.EqualValues(t, 40000, block.DurationUS)
	assert.EqualValues(t, 8, block.Repetitions)
	assert.EqualValues(t, 20000, block.StartFreqHz)
	assert.EqualValues(t, 100000, block.StopFreqHz)
}

func TestResolveUnknownCommandYieldsZeroParams(t *testing.T) {
	p := Resolve(Document{}, 1, "not_a_real_command")
	assert.Equal(t, protocol.Params{}, p)
}
