package plan

import "errors"

// ErrIncomplete means the document parsed but is missing the minimum
// fields (sensors, default_measurement_sequence) needed to seed a queue.
// Load and the fallback path both treat this the same as a parse error.
var ErrIncomplete = errors.New("plan: incomplete document")

// ErrUnknownCommand is returned when a sequence names a command that has
// no entry in the name table.
var ErrUnknownCommand = errors.New("plan: unknown command name")
