package pipeline

import "strings"

// wordSmoother rebuffers arbitrary text deltas into word-boundary
// chunks. Content is unchanged; only chunk boundaries move. Each emitted
// chunk is a run of non-space characters together with its trailing
// whitespace, so a consumer renders whole words.
type wordSmoother struct {
	buf strings.Builder
}

// Write appends a delta and returns the complete word chunks now
// available. Text after the last whitespace stays buffered until more
// input or a Flush.
func (s *wordSmoother) Write(delta string) []string {
	s.buf.WriteString(delta)
	text := s.buf.String()

	cut := lastSpaceRunEnd(text)
	if cut <= 0 {
		return nil
	}

	s.buf.Reset()
	s.buf.WriteString(text[cut:])
	return splitWordChunks(text[:cut])
}

// Flush returns whatever is still buffered.
func (s *wordSmoother) Flush() string {
	rest := s.buf.String()
	s.buf.Reset()
	return rest
}

// lastSpaceRunEnd returns the index just past the last whitespace
// character, or 0 if the text holds no whitespace.
func lastSpaceRunEnd(text string) int {
	for i := len(text) - 1; i >= 0; i-- {
		if isSpace(text[i]) {
			return i + 1
		}
	}
	return 0
}

// splitWordChunks splits text (which ends in whitespace) into
// word-plus-trailing-whitespace chunks.
func splitWordChunks(text string) []string {
	var chunks []string
	start := 0
	inSpace := false
	for i := 0; i < len(text); i++ {
		space := isSpace(text[i])
		if inSpace && !space {
			chunks = append(chunks, text[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
