package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus replays a scripted sequence of responses, one per call to
// Exchange, regardless of what was sent.
type fakeBus struct {
	responses [][]byte
	calls     int
}

func (b *fakeBus) Exchange(ctx context.Context, frame []byte, timeout time.Duration) ([]byte, error) {
	if b.calls >= len(b.responses) {
		b.calls++
		return nil, nil
	}
	r := b.responses[b.calls]
	b.calls++
	return r, nil
}

func ackFrame(id protocol.SensorId, data ...byte) []byte {
	payload := append([]byte{0x06}, data...)
	return protocol.Encode(id, payload)
}

func nakFrame(id protocol.SensorId) []byte {
	return protocol.Encode(id, []byte{0x0F})
}

func TestProbeOutcomes(t *testing.T) {
	s := New(5, protocol.VariantV5, 0)

	bus := &fakeBus{responses: [][]byte{ackFrame(5)}}
	outcome, err := s.Probe(context.Background(), bus)
	require.NoError(t, err)
	assert.Equal(t, VerbOK, outcome)

	bus = &fakeBus{responses: [][]byte{nil}}
	outcome, err = s.Probe(context.Background(), bus)
	require.NoError(t, err)
	assert.Equal(t, VerbNoResponse, outcome)

	bus = &fakeBus{responses: [][]byte{nakFrame(5)}}
	outcome, err = s.Probe(context.Background(), bus)
	require.NoError(t, err)
	assert.Equal(t, VerbNak, outcome)
}

func TestSetDampingUpdatesState(t *testing.T) {
	s := New(5, protocol.VariantV5, 0)
	bus := &fakeBus{responses: [][]byte{ackFrame(5)}}
	outcome, err := s.SetDamping(context.Background(), bus, 200)
	require.NoError(t, err)
	assert.Equal(t, VerbOK, outcome)
	assert.Equal(t, 200, s.Damping)
}

func TestSetDampingFailureLeavesStateUnchanged(t *testing.T) {
	s := New(5, protocol.VariantV5, 10)
	bus := &fakeBus{responses: [][]byte{nakFrame(5)}}
	outcome, err := s.SetDamping(context.Background(), bus, 200)
	require.NoError(t, err)
	assert.Equal(t, VerbNak, outcome)
	assert.Equal(t, 10, s.Damping)
}

func TestMeasureBlockRetriesWithinBatchBudget(t *testing.T) {
	s := New(7, protocol.VariantV5, 0)
	audio := []byte{0x00, 0x01, 0x00, 0x02}
	// rep1 fails twice then succeeds, rep2 succeeds immediately: 2 retries
	// used of the 3-per-batch budget.
	bus := &fakeBus{responses: [][]byte{
		nakFrame(7),
		nil,
		ackFrame(7, audio...),
		ackFrame(7, audio...),
	}}
	p := protocol.Params{DurationUS: 50000, Repetitions: 2}
	res, err := s.MeasureBlock(context.Background(), bus, p)
	require.NoError(t, err)
	assert.Equal(t, MeasureOK, res.Status)
	assert.Equal(t, []int16{1, 2, 1, 2}, res.Samples)
}

func TestMeasureBlockReturnsPartialWhenRetriesExhausted(t *testing.T) {
	s := New(7, protocol.VariantV5, 0)
	audio := []byte{0x00, 0x01}
	bus := &fakeBus{responses: [][]byte{
		ackFrame(7, audio...), // rep1 ok
		nakFrame(7),           // rep2 fails
		nakFrame(7),           // retry 1 fails
		nakFrame(7),           // retry 2 fails
		// retry 3 gets no reply (fakeBus returns nil past the script),
		// which exhausts the budget.
	}}
	p := protocol.Params{DurationUS: 50000, Repetitions: 2}
	res, err := s.MeasureBlock(context.Background(), bus, p)
	require.NoError(t, err)
	assert.Equal(t, MeasurePartial, res.Status)
	assert.Equal(t, []int16{1}, res.Samples)
}

func TestMeasureBlockReturnsFailedWhenNothingCollected(t *testing.T) {
	s := New(7, protocol.VariantV5, 0)
	bus := &fakeBus{responses: [][]byte{nil, nil, nil, nil}}
	p := protocol.Params{DurationUS: 50000, Repetitions: 1}
	res, err := s.MeasureBlock(context.Background(), bus, p)
	require.NoError(t, err)
	assert.Equal(t, MeasureFailed, res.Status)
	assert.Empty(t, res.Samples)
}

func TestMeasureEnvBadPayload(t *testing.T) {
	s := New(7, protocol.VariantV5, 0)
	bus := &fakeBus{responses: [][]byte{ackFrame(7, 0x00, 0x01, 0x02)}} // 3 bytes, want 8
	_, err := s.MeasureEnv(context.Background(), bus)
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestMeasureEnvSuccess(t *testing.T) {
	s := New(7, protocol.VariantV5, 0)
	data := []byte{0x08, 0x66, 0x11, 0x94, 0x07, 0xBC, 0x13, 0x88}
	bus := &fakeBus{responses: [][]byte{ackFrame(7, data...)}}
	res, err := s.MeasureEnv(context.Background(), bus)
	require.NoError(t, err)
	assert.Equal(t, MeasureOK, res.Status)
	assert.InDelta(t, 21.50, res.Reading.InsideTempC, 0.001)
}

func TestMeasureTofBlockRetryPolicy(t *testing.T) {
	s := New(7, protocol.VariantV5, 0)
	tofData := []byte{0x00, 0x00, 0x27, 0x10} // 10000 ns
	bus := &fakeBus{responses: [][]byte{
		nakFrame(7),
		ackFrame(7, tofData...),
	}}
	p := protocol.Params{TimeoutUS: 1000, Repetitions: 1}
	res, err := s.MeasureTofBlock(context.Background(), bus, p)
	require.NoError(t, err)
	assert.Equal(t, MeasureOK, res.Status)
	assert.Equal(t, []uint32{10000}, res.NS)
}
