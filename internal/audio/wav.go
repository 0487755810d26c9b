package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeWAV wraps PCM-16 samples in a RIFF/WAVE header and returns the
// concatenated bytes (header + data). sampleRate in Hz and channels are
// used to populate the header; samples are written little-endian.
func EncodeWAV(samples []int16, sampleRate, channels int) []byte {
	const bitsPerSample = 16
	byteRate := uint32(sampleRate * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)
	dataLen := uint32(len(samples) * 2)
	riffSize := uint32(4 + (8 + 16) + (8 + dataLen))

	buf := &bytes.Buffer{}
	buf.Grow(44 + len(samples)*2)
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataLen)
	binary.Write(buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

// DecodeWAV parses 16-bit PCM WAV data into a Buffer. Only uncompressed
// PCM is supported; a malformed header is reported as ErrMalformedBuffer
// so callers can treat it as a fatal chunking failure.
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("%w: wav data too short (%d bytes)", ErrMalformedBuffer, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrMalformedBuffer)
	}
	if string(data[12:16]) != "fmt " {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrMalformedBuffer)
	}
	audioFormat := binary.LittleEndian.Uint16(data[20:22])
	if audioFormat != 1 {
		return nil, fmt.Errorf("%w: unsupported audio format %d (want PCM)", ErrMalformedBuffer, audioFormat)
	}
	channels := int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	bitsPerSample := binary.LittleEndian.Uint16(data[34:36])
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d (want 16)", ErrMalformedBuffer, bitsPerSample)
	}

	// Walk chunks until "data"; some encoders insert LIST/INFO chunks
	// between fmt and data.
	pos := 36
	for {
		if pos+8 > len(data) {
			return nil, fmt.Errorf("%w: missing data chunk", ErrMalformedBuffer)
		}
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		if id == "data" {
			pos += 8
			if pos+size > len(data) {
				size = len(data) - pos
			}
			numSamples := size / 2
			if numSamples == 0 {
				return nil, fmt.Errorf("%w: no audio data", ErrMalformedBuffer)
			}
			samples := make([]int16, numSamples)
			if err := binary.Read(bytes.NewReader(data[pos:pos+numSamples*2]), binary.LittleEndian, samples); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedBuffer, err)
			}
			return NewBuffer(samples, sampleRate, channels)
		}
		pos += 8 + size
		if size%2 == 1 {
			pos++
		}
	}
}
