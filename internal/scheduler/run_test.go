package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plense/plensor-gateway/internal/plan"
	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReseedDefaultPushesOneMessagePerSensorPerSequenceStep(t *testing.T) {
	bus := &scriptedBus{}
	s := newTestScheduler(t, bus, 5, 6)

	s.reseedDefault()

	var msgs []protocol.SensorId
	for {
		m, ok := s.q.TryPop()
		if !ok {
			break
		}
		msgs = append(msgs, m.Target)
	}
	assert.Equal(t, []protocol.SensorId{5, 6}, msgs)
}

func TestReseedDefaultOnlySeedsResponsiveSensors(t *testing.T) {
	bus := &scriptedBus{}
	s := newTestScheduler(t, bus, 5, 6)
	s.sensors[6].Responsive = false

	s.reseedDefault()

	m, ok := s.q.TryPop()
	require.True(t, ok)
	assert.Equal(t, protocol.SensorId(5), m.Target)
	_, ok = s.q.TryPop()
	assert.False(t, ok)
}

func TestReloadPlanClearsQueueAndRebuildsSensors(t *testing.T) {
	bus := &scriptedBus{}
	s := newTestScheduler(t, bus, 5)
	s.q.PushBack(queue.Message{Target: 5, Command: protocol.Command{Kind: protocol.KindMeasureEnv, Target: 5}})

	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	yamlDoc := "sensors: [9]\ndefault_measurement_sequence: [\"measure_env\"]\n"
	require.NoError(t, os.WriteFile(planPath, []byte(yamlDoc), 0o644))
	s.planPath = planPath

	s.reloadPlan()

	_, ok := s.q.TryPop()
	assert.False(t, ok, "reload clears pending queued work")
	assert.Contains(t, s.sensors, protocol.SensorId(9))
	assert.NotContains(t, s.sensors, protocol.SensorId(5))
}

func TestReloadPlanFallsBackToCompiledDefaultOnParseFailure(t *testing.T) {
	bus := &scriptedBus{}
	s := newTestScheduler(t, bus, 5)
	s.q.PushBack(queue.Message{Target: 5, Command: protocol.Command{Kind: protocol.KindMeasureEnv, Target: 5}})

	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte("not: [valid"), 0o644))
	s.planPath = planPath

	s.reloadPlan()

	_, ok := s.q.TryPop()
	assert.False(t, ok, "reload still clears pending queued work on fallback")
	assert.Contains(t, s.sensors, protocol.SensorId(5), "fallback reuses the previously-known sensor set")
	assert.Equal(t, plan.FallbackSequence, s.currentDoc().DefaultSequence)
}

func TestReloadMetadataAddsNewSensorsWithoutClearingQueue(t *testing.T) {
	bus := &scriptedBus{}
	s := newTestScheduler(t, bus, 5)
	s.q.PushBack(queue.Message{Target: 5, Command: protocol.Command{Kind: protocol.KindMeasureEnv, Target: 5}})

	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	yamlDoc := "sensors: [5, 9]\ndefault_measurement_sequence: [\"measure_env\"]\n"
	require.NoError(t, os.WriteFile(planPath, []byte(yamlDoc), 0o644))
	s.planPath = planPath

	s.reloadMetadata()

	next, ok := s.q.TryPop()
	require.True(t, ok, "a newly-present sensor gets a push_front probe+calibrate")
	assert.Equal(t, protocol.SensorId(9), next.Target)
	assert.Equal(t, protocol.KindProbe, next.Command.Kind)
	assert.True(t, next.CalibrateAfter)
	assert.Equal(t, queue.OriginRecovery, next.Origin)

	pending, ok := s.q.TryPop()
	require.True(t, ok, "metadata reload must not clear pre-existing queued work")
	assert.Equal(t, protocol.SensorId(5), pending.Target)
	assert.Equal(t, protocol.KindMeasureEnv, pending.Command.Kind)

	assert.Contains(t, s.sensors, protocol.SensorId(9))
}

func TestReloadMetadataDropsRemovedSensors(t *testing.T) {
	bus := &scriptedBus{}
	s := newTestScheduler(t, bus, 5, 6)

	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	yamlDoc := "sensors: [5]\ndefault_measurement_sequence: [\"measure_env\"]\n"
	require.NoError(t, os.WriteFile(planPath, []byte(yamlDoc), 0o644))
	s.planPath = planPath

	s.reloadMetadata()

	assert.Contains(t, s.sensors, protocol.SensorId(5))
	assert.NotContains(t, s.sensors, protocol.SensorId(6))
	_, ok := s.q.TryPop()
	assert.False(t, ok, "no previously-present sensor triggers a probe chain")
}
