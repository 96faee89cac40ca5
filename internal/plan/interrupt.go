package plan

import (
	"encoding/json"
	"fmt"

	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/queue"
)

// Interrupt message types, the discriminator the Python original calls
// get_byte|calibrate|measure; probe|calibrate|reset|measure here is the
// superset spec.md's §4.6 encoding settled on.
const (
	InterruptProbe     = "probe"
	InterruptCalibrate = "calibrate"
	InterruptReset     = "reset"
	InterruptMeasure   = "measure"
)

// InterruptSettings is the measurement_settings object attached to one
// interrupt message: a type discriminator, a command name when
// type=="measure", and whatever parameter overrides accompany it.
type InterruptSettings struct {
	Type    string         `json:"type"`
	Command string         `json:"command,omitempty"`
	Params  ParamOverrides `json:"params,omitempty"`
}

// InterruptMessage is one element of message_interrupt.json.
type InterruptMessage struct {
	SensorID protocol.SensorId `json:"sensor_id"`
	Settings InterruptSettings `json:"measurement_settings"`
}

// DecodeInterrupts parses the contents of message_interrupt.json.
func DecodeInterrupts(data []byte) ([]InterruptMessage, error) {
	var msgs []InterruptMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("plan: decode interrupts: %w", err)
	}
	return msgs, nil
}

// ToQueueMessage resolves one interrupt entry to a queue.Message, using
// doc for parameter resolution when the entry is a measure type.
func (m InterruptMessage) ToQueueMessage(doc Document) (queue.Message, error) {
	var name string
	switch m.Settings.Type {
	case InterruptProbe:
		name = NameProbe
	case InterruptCalibrate:
		name = NameCalibrate
	case InterruptReset:
		name = NameReset
	case InterruptMeasure:
		name = m.Settings.Command
	default:
		return queue.Message{}, fmt.Errorf("plan: unknown interrupt type %q", m.Settings.Type)
	}

	kind, err := KindForName(name)
	if err != nil {
		return queue.Message{}, err
	}
	params := Resolve(doc, m.SensorID, name)
	applyOverride(&params, m.Settings.Params)

	return queue.Message{
		Target: m.SensorID,
		Origin: queue.OriginInterrupt,
		Command: protocol.Command{
			Kind:   kind,
			Target: m.SensorID,
			Params: params,
		},
	}, nil
}
