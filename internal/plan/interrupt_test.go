package plan

import (
	"testing"

	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInterruptJSON = `[
	{"sensor_id": 9, "measurement_settings": {"type": "probe"}},
	{"sensor_id": 9, "measurement_settings": {"type": "measure", "command": "measure_block", "params": {"repetitions": 3}}}
]`

func TestDecodeInterrupts(t *testing.T) {
	msgs, err := DecodeInterrupts([]byte(sampleInterruptJSON))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, protocol.SensorId(9), msgs[0].SensorID)
	assert.Equal(t, InterruptProbe, msgs[0].Settings.Type)
	assert.Equal(t, "measure_block", msgs[1].Settings.Command)
}

func TestInterruptMessageToQueueMessage(t *testing.T) {
	msgs, err := DecodeInterrupts([]byte(sampleInterruptJSON))
	require.NoError(t, err)

	qm, err := msgs[0].ToQueueMessage(Document{})
	require.NoError(t, err)
	assert.Equal(t, queue.OriginInterrupt, qm.Origin)
	assert.Equal(t, protocol.KindProbe, qm.Command.Kind)

	qm2, err := msgs[1].ToQueueMessage(Document{})
	require.NoError(t, err)
	assert.Equal(t, protocol.KindMeasureBlock, qm2.Command.Kind)
	assert.EqualValues(t, 3, qm2.Command.Params.Repetitions)
}

func TestToQueueMessageRejectsUnknownType(t *testing.T) {
	m := InterruptMessage{SensorID: 1, Settings: InterruptSettings{Type: "nonsense"}}
	_, err := m.ToQueueMessage(Document{})
	assert.Error(t, err)
}
