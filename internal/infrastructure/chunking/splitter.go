package chunking

import (
	"strings"
	"unicode"
)

// Splitter cuts text into overlapping windows of ChunkSize runes. A window
// ends at the last sentence or word boundary in its second half when there
// is one, so chunks rarely split words.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	for start := 0; start < len(runes); {
		end := min(start+s.ChunkSize, len(runes))
		if end < len(runes) {
			end = boundaryBefore(runes, start+s.ChunkSize/2, end)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
		next := end - s.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

// boundaryBefore returns the cut position in (floor, end]: after the last
// sentence terminator, else after the last space, else end.
func boundaryBefore(runes []rune, floor, end int) int {
	space := -1
	for i := end - 1; i > floor; i-- {
		switch r := runes[i]; {
		case r == '.' || r == '?' || r == '!' || r == '।' || r == '\n':
			return i + 1
		case space < 0 && unicode.IsSpace(r):
			space = i + 1
		}
	}
	if space > 0 {
		return space
	}
	return end
}
