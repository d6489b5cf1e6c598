package analyzer

import "strings"

// Chunking parameters for long documents: overlapping fixed-size windows
// sized to fit comfortably inside model context limits.
const (
	defaultChunkSize = 2000
	defaultOverlap   = 200
)

type splitter struct {
	chunkSize int
	overlap   int
}

func newSplitter(chunkSize, overlap int) *splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &splitter{chunkSize: chunkSize, overlap: overlap}
}

func (s *splitter) split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
