package audio

import (
	"encoding/binary"
	"fmt"
)

// EncodeWAV wraps raw little-endian PCM in a RIFF/WAVE container.
// No transcoding happens; the payload is written as-is.
func EncodeWAV(pcm []byte, sampleRate, channels, bitsPerSample int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if bitsPerSample%8 != 0 || bitsPerSample <= 0 {
		return nil, fmt.Errorf("invalid bits per sample %d", bitsPerSample)
	}

	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, 0, 44+len(pcm))
	buf := make([]byte, 4)

	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf, v)
		out = append(out, buf[:4]...)
	}
	writeU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(buf, v)
		out = append(out, buf[:2]...)
	}

	out = append(out, []byte("RIFF")...)
	writeU32(uint32(36 + len(pcm)))
	out = append(out, []byte("WAVE")...)

	out = append(out, []byte("fmt ")...)
	writeU32(16)
	writeU16(1) // PCM format
	writeU16(uint16(channels))
	writeU32(uint32(sampleRate))
	writeU32(uint32(byteRate))
	writeU16(uint16(blockAlign))
	writeU16(uint16(bitsPerSample))

	out = append(out, []byte("data")...)
	writeU32(uint32(len(pcm)))
	out = append(out, pcm...)

	return out, nil
}
