package plan

import "github.com/plense/plensor-gateway/internal/protocol"

// Command names as they appear in measurement_settings, sequences, and
// the interrupt channel's command tag.
const (
	NameProbe          = "probe"
	NameCalibrate      = "calibrate"
	NameReset          = "reset"
	NameSetID          = "set_id"
	NameSetDamping     = "set_damping"
	NameMeasureBlock   = "measure_block"
	NameMeasureSine    = "measure_sine"
	NameMeasureEnv     = "measure_env"
	NameMeasureTofImp  = "measure_tof_impulse"
	NameMeasureTofBlk  = "measure_tof_block"
)

var nameToKind = map[string]protocol.Kind{
	NameProbe:         protocol.KindProbe,
	NameCalibrate:     protocol.KindCalibrate,
	NameReset:         protocol.KindReset,
	NameSetID:         protocol.KindSetID,
	NameSetDamping:    protocol.KindSetDamping,
	NameMeasureBlock:  protocol.KindMeasureBlock,
	NameMeasureSine:   protocol.KindMeasureSine,
	NameMeasureEnv:    protocol.KindMeasureEnv,
	NameMeasureTofImp: protocol.KindMeasureTofImpulse,
	NameMeasureTofBlk: protocol.KindMeasureTofBlock,
}

// KindForName resolves a plan/interrupt command name to its protocol Kind.
func KindForName(name string) (protocol.Kind, error) {
	k, ok := nameToKind[name]
	if !ok {
		return 0, ErrUnknownCommand
	}
	return k, nil
}
