package audio

import (
	"bytes"
	"testing"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name   string
		chunks []Chunk
		want   []byte
	}{
		{
			name:   "empty",
			chunks: nil,
			want:   nil,
		},
		{
			name: "out of order pair",
			chunks: []Chunk{
				{Index: 1, Audio: []byte("B")},
				{Index: 0, Audio: []byte("A")},
			},
			want: []byte("AB"),
		},
		{
			name: "already ordered",
			chunks: []Chunk{
				{Index: 0, Audio: []byte("one-")},
				{Index: 1, Audio: []byte("two-")},
				{Index: 2, Audio: []byte("three")},
			},
			want: []byte("one-two-three"),
		},
		{
			name: "reversed with gaps",
			chunks: []Chunk{
				{Index: 7, Audio: []byte("z")},
				{Index: 3, Audio: []byte("y")},
				{Index: 0, Audio: []byte("x")},
			},
			want: []byte("xyz"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble(tt.chunks)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Assemble() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	chunks := []Chunk{
		{Index: 2, Audio: []byte("c")},
		{Index: 0, Audio: []byte("a")},
		{Index: 1, Audio: []byte("b")},
	}
	_ = Assemble(chunks)

	if chunks[0].Index != 2 || chunks[1].Index != 0 || chunks[2].Index != 1 {
		t.Errorf("input order changed: %+v", chunks)
	}
}

func TestChunkWireRoundTrip(t *testing.T) {
	chunks := []Chunk{
		{Index: 1, Audio: []byte{0xff, 0xfb, 0x90}, Text: "Second."},
		{Index: 0, Audio: []byte{0x49, 0x44, 0x33}, Text: "First."},
	}

	decoded, err := DecodeChunks(EncodeChunks(chunks))
	if err != nil {
		t.Fatalf("DecodeChunks failed: %v", err)
	}
	if got, want := Assemble(decoded), []byte{0x49, 0x44, 0x33, 0xff, 0xfb, 0x90}; !bytes.Equal(got, want) {
		t.Errorf("Assemble(decoded) = %x, want %x", got, want)
	}
}

func TestDecodeChunksInvalid(t *testing.T) {
	_, err := DecodeChunks([]WireChunk{{Index: 0, Audio: "not base64!"}})
	if err == nil {
		t.Error("expected error for invalid base64")
	}
}
