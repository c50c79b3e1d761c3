package audio

import (
	"encoding/base64"
	"fmt"
	"sort"
)

// Chunk is one independently synthesized piece of a longer text.
type Chunk struct {
	Index int    // Position of the chunk in the original text
	Audio []byte // Encoded audio (MP3)
	Text  string // Source text the chunk was synthesized from
}

// WireChunk is the JSON form of a chunk, with base64 audio.
type WireChunk struct {
	Index int    `json:"index"`
	Audio string `json:"audio"`
	Text  string `json:"text"`
}

// Assemble concatenates chunk audio in ascending Index order regardless of
// the order the chunks arrived in. The input slice is left untouched.
func Assemble(chunks []Chunk) []byte {
	if len(chunks) == 0 {
		return nil
	}

	ordered := make([]Chunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	size := 0
	for _, c := range ordered {
		size += len(c.Audio)
	}

	out := make([]byte, 0, size)
	for _, c := range ordered {
		out = append(out, c.Audio...)
	}
	return out
}

// DecodeChunks converts wire chunks into chunks with raw audio.
func DecodeChunks(wire []WireChunk) ([]Chunk, error) {
	chunks := make([]Chunk, 0, len(wire))
	for _, w := range wire {
		data, err := base64.StdEncoding.DecodeString(w.Audio)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: invalid audio encoding: %w", w.Index, err)
		}
		chunks = append(chunks, Chunk{Index: w.Index, Audio: data, Text: w.Text})
	}
	return chunks, nil
}

// EncodeChunks converts chunks into their wire form.
func EncodeChunks(chunks []Chunk) []WireChunk {
	wire := make([]WireChunk, 0, len(chunks))
	for _, c := range chunks {
		wire = append(wire, WireChunk{
			Index: c.Index,
			Audio: base64.StdEncoding.EncodeToString(c.Audio),
			Text:  c.Text,
		})
	}
	return wire
}
