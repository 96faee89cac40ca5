package protocol

import "errors"

// Wire-level failures. These are sentinel values so callers can compare
// with errors.Is even after a layer has wrapped them with extra context.
var (
	// ErrMalformedFrame covers a wrong start byte, a length that doesn't
	// match the remaining bytes, a bad checksum, or a frame cut short.
	ErrMalformedFrame = errors.New("protocol: malformed frame")

	// ErrProtocol is returned when a response's first payload byte is
	// neither ackByte nor nakByte.
	ErrProtocol = errors.New("protocol: unexpected response byte")

	// ErrBadEnvLength is returned when an env payload isn't exactly 8 bytes.
	ErrBadEnvLength = errors.New("protocol: env payload must be 8 bytes")

	// ErrBadTOFLength is returned when a TOF payload isn't exactly 4 bytes.
	ErrBadTOFLength = errors.New("protocol: tof payload must be 4 bytes")

	// ErrOddAudioLength is returned when an audio payload has a trailing
	// odd byte that can't form a complete sample.
	ErrOddAudioLength = errors.New("protocol: audio payload has odd length")
)
