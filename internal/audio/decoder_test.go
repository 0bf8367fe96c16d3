package audio

import (
	"encoding/base64"
	"errors"
	"math"
	"testing"
)

func TestDecodeBase64RoundTrip(t *testing.T) {
	t.Parallel()

	original := []float32{0.0, 0.5, -0.5, 0.999, -1.0, 0.000123}
	encoded := base64.StdEncoding.EncodeToString(EncodeSamples(original))

	decoded, err := DecodeBase64(encoded)
	if err != nil {
		t.Fatalf("DecodeBase64 returned error: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("sample %d = %v, want %v (bit-exact)", i, decoded[i], original[i])
		}
	}
}

func TestDecodeBase64Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"empty payload", ""},
		{"length not multiple of 4", base64.StdEncoding.EncodeToString([]byte{1, 2, 3})},
		{"truncated sample", base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4, 5})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeBase64(tt.encoded)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("error %v is not a *DecodeError", err)
			}
		})
	}
}

func TestFromSamplesEmpty(t *testing.T) {
	t.Parallel()

	_, err := FromSamples(nil)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("FromSamples(nil) error = %v, want *DecodeError", err)
	}
}

func TestNormalizeInt16Convention(t *testing.T) {
	t.Parallel()

	samples := []float32{32767, -32768, 16384, 0}
	scaled := Normalize(samples)

	var peak float64
	for _, s := range scaled {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-1.0) > 0.001 {
		t.Errorf("peak after rescale = %v, want ~1.0", peak)
	}

	// Input slice must not be mutated.
	if samples[0] != 32767 {
		t.Error("Normalize mutated its input")
	}
}

func TestNormalizeLeavesNormalizedInputAlone(t *testing.T) {
	t.Parallel()

	samples := []float32{0.25, -0.75, 1.0}
	scaled := Normalize(samples)

	for i := range samples {
		if scaled[i] != samples[i] {
			t.Errorf("sample %d changed from %v to %v", i, samples[i], scaled[i])
		}
	}
}

func TestPCM16Clipping(t *testing.T) {
	t.Parallel()

	raw := PCM16([]float32{2.0, -2.0})
	if len(raw) != 4 {
		t.Fatalf("len = %d, want 4", len(raw))
	}
	// 2.0 clips to 32767 = 0xFF 0x7F little-endian.
	if raw[0] != 0xFF || raw[1] != 0x7F {
		t.Errorf("positive clip = %#x %#x, want 0xff 0x7f", raw[0], raw[1])
	}
}
