package cache

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hello")},
		{"repetitive", []byte(strings.Repeat("the quick brown fox ", 1000))},
		{"binary", []byte{0x00, 0x01, 0xff, 0xfe, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := compressPayload(tt.data)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}

			restored, err := decompressPayload(compressed)
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}

			if !bytes.Equal(restored, tt.data) {
				t.Error("round trip did not restore original bytes")
			}
		})
	}
}

func TestCompressShrinksRepetitiveData(t *testing.T) {
	data := []byte(strings.Repeat("abcdefgh", 10000))

	compressed, err := compressPayload(data)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	if len(compressed) >= len(data) {
		t.Errorf("compressed %d bytes to %d, expected a reduction", len(data), len(compressed))
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	if _, err := decompressPayload([]byte("not a brotli stream")); err == nil {
		t.Error("expected error for invalid input")
	}
}
