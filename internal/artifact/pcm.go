package artifact

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// pcmMagic identifies this module's lossless audio container. It is not
// a real FLAC bitstream — no FLAC encoder exists anywhere in the
// example pack (see DESIGN.md) — but it is a lossless, self-describing
// container for the same 16-bit big-endian PCM samples FLAC would hold,
// written under the .flac extension spec.md's filename template
// requires.
var pcmMagic = [4]byte{'P', 'L', 'S', '1'}

func encodePCM(rateHz int, samples []int16) []byte {
	buf := new(bytes.Buffer)
	buf.Write(pcmMagic[:])
	binary.Write(buf, binary.BigEndian, uint32(rateHz))
	binary.Write(buf, binary.BigEndian, uint32(len(samples)))
	binary.Write(buf, binary.BigEndian, samples)
	return buf.Bytes()
}

func decodePCM(data []byte) (rateHz int, samples []int16, err error) {
	if len(data) < 12 || [4]byte(data[:4]) != pcmMagic {
		return 0, nil, fmt.Errorf("artifact: bad pcm container header")
	}
	rate := binary.BigEndian.Uint32(data[4:8])
	n := binary.BigEndian.Uint32(data[8:12])
	body := data[12:]
	if uint32(len(body)) != n*2 {
		return 0, nil, fmt.Errorf("artifact: pcm sample count mismatch")
	}
	samples = make([]int16, n)
	for i := range samples {
		samples[i] = int16(binary.BigEndian.Uint16(body[i*2:]))
	}
	return int(rate), samples, nil
}
