// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests 16-bit and 24-bit PCM encoding
package encode

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
)

func TestNewPCMEncoder(t *testing.T) {
	tests := []struct {
		name        string
		bitDepth    int
		wantBytes   int
		wantErr     bool
		errContains string
	}{
		{name: "valid 16-bit PCM", bitDepth: 16, wantBytes: 2},
		{name: "valid 24-bit PCM", bitDepth: 24, wantBytes: 3},
		{name: "unsupported bit depth", bitDepth: 32, wantErr: true, errContains: "unsupported bit depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewPCMEncoder(tt.bitDepth)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewPCMEncoder() expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewPCMEncoder() error = %v, want error containing %v", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPCMEncoder() unexpected error = %v", err)
			}
			if encoder.BitDepth() != tt.bitDepth {
				t.Errorf("expected bit depth %d, got %d", tt.bitDepth, encoder.BitDepth())
			}
			if encoder.BytesPerSample() != tt.wantBytes {
				t.Errorf("expected %d bytes per sample, got %d", tt.wantBytes, encoder.BytesPerSample())
			}
		})
	}
}

func TestPCMEncoder_Encode16Bit(t *testing.T) {
	encoder, err := NewPCMEncoder(16)
	if err != nil {
		t.Fatalf("NewPCMEncoder() failed: %v", err)
	}

	samples := []float64{0, 1, -1, 0.5, 2, -3}
	want := []int16{0, 32767, -32767, 16384, 32767, -32767}

	output := make([]byte, len(samples)*2)
	if n := encoder.EncodeTo(output, samples); n != len(output) {
		t.Fatalf("EncodeTo() wrote %d bytes, want %d", n, len(output))
	}

	for i := range samples {
		actual := int16(binary.LittleEndian.Uint16(output[i*2:]))
		if actual != want[i] {
			t.Errorf("Sample %d: got %d, want %d", i, actual, want[i])
		}
		if q := encoder.Quantize(samples[i]); q != int(want[i]) {
			t.Errorf("Quantize(%f): got %d, want %d", samples[i], q, want[i])
		}
	}
}

func TestPCMEncoder_Encode24Bit(t *testing.T) {
	encoder, err := NewPCMEncoder(24)
	if err != nil {
		t.Fatalf("NewPCMEncoder() failed: %v", err)
	}

	samples := []float64{0, 1, -1, 0.25}

	output := make([]byte, len(samples)*3)
	if n := encoder.EncodeTo(output, samples); n != len(output) {
		t.Fatalf("EncodeTo() wrote %d bytes, want %d", n, len(output))
	}

	for i, sample := range samples {
		expected := audio.SampleTo24Bit(audio.FloatToInt24(sample))
		actual := [3]byte{output[i*3], output[i*3+1], output[i*3+2]}
		if actual != expected {
			t.Errorf("Sample %d: got %v, want %v", i, actual, expected)
		}
	}

	// full scale packs to 0x7FFFFF
	if output[3] != 0xFF || output[4] != 0xFF || output[5] != 0x7F {
		t.Errorf("expected full scale 7FFFFF, got %X %X %X", output[5], output[4], output[3])
	}
}

func TestPCMEncoder_EncodeToShortBuffer(t *testing.T) {
	encoder, err := NewPCMEncoder(16)
	if err != nil {
		t.Fatalf("NewPCMEncoder() failed: %v", err)
	}

	tests := []struct {
		name    string
		dstLen  int
		samples int
		want    int
	}{
		{"fewer samples than room", 8, 2, 4},
		{"less room than samples", 5, 4, 4},
		{"no room", 1, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := encoder.EncodeTo(make([]byte, tt.dstLen), make([]float64, tt.samples))
			if n != tt.want {
				t.Errorf("expected %d bytes, got %d", tt.want, n)
			}
		})
	}
}
