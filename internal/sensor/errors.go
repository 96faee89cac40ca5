package sensor

import "errors"

// ErrNoResponse covers an empty reply, a malformed frame, and a response
// whose ack byte protocol couldn't classify — all treated identically for
// retry purposes per the error taxonomy this implements.
var ErrNoResponse = errors.New("sensor: no response")

// ErrBadPayload is returned when a response decoded cleanly at the frame
// level but its payload had the wrong shape for the command that was
// sent (e.g. an env reply that isn't 8 bytes).
var ErrBadPayload = errors.New("sensor: bad payload")
