// Package audio converts wire-format audio payloads into normalized
// sample buffers for transcription.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// Buffer is a transient mono sample buffer. Samples are 32-bit floats
// normalized to [-1.0, 1.0]; SampleRate is trusted caller metadata and
// is not verified against the actual capture rate.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// DecodeError indicates malformed audio input. It is a client fault and
// maps to a 400 response at the transport boundary.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "audio decode error: " + e.Reason
}

// DecodeBase64 decodes a base64 string into a sample slice. The payload
// is interpreted as a packed sequence of little-endian 32-bit floats.
func DecodeBase64(encoded string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("invalid base64: %v", err)}
	}
	return DecodeBytes(raw)
}

// DecodeBytes interprets raw bytes as little-endian float32 samples.
func DecodeBytes(raw []byte) ([]float32, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Reason: "empty audio payload"}
	}
	if len(raw)%4 != 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("byte length %d is not a multiple of 4", len(raw))}
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}

// FromSamples validates an already-decoded sample sequence.
func FromSamples(samples []float32) ([]float32, error) {
	if len(samples) == 0 {
		return nil, &DecodeError{Reason: "empty sample sequence"}
	}
	return samples, nil
}

// Normalize rescales a buffer recorded with a 16-bit integer convention.
// If any sample magnitude exceeds 1.0 the whole buffer is divided by
// 32768; otherwise the samples are returned untouched.
func Normalize(samples []float32) []float32 {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}

	if peak <= 1.0 {
		return samples
	}

	scaled := make([]float32, len(samples))
	for i, s := range samples {
		scaled[i] = s / 32768.0
	}
	return scaled
}

// EncodeSamples packs samples into little-endian float32 bytes. Used by
// the CLI and tests to produce wire payloads.
func EncodeSamples(samples []float32) []byte {
	raw := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}
	return raw
}

// PCM16 converts normalized samples into little-endian 16-bit PCM bytes
// for recognition engines that consume LINEAR16 audio. Samples outside
// [-1.0, 1.0] are clipped.
func PCM16(samples []float32) []byte {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		v := int16(s * 32767)
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
	}
	return raw
}
