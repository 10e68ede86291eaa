package llm

import "strings"

// thinkOpen and thinkClose delimit inline reasoning that some models emit
// inline in the content stream rather than in a separate reasoning field
// (§4.3 "Inline tag demultiplex"). Markers are matched without regard to case.
const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// tagSplitter demultiplexes a chunked byte stream into "thinking" and
// "content" output, splitting on <think>...</think> markers that may
// straddle chunk boundaries. It never looks ahead further than it has to:
// at most len(longest tag)-1 bytes are ever held back waiting to see whether
// they're the start of a marker.
type tagSplitter struct {
	inThink bool
	pending string // bytes held back because they might be a partial tag
}

// newTagSplitter returns a splitter in the "outside a think block" state.
func newTagSplitter() *tagSplitter {
	return &tagSplitter{}
}

// maxTagLen is the longest marker recognized, minus one: the most bytes a
// partial match can hold back before it's provably not a marker.
const maxTagLen = len(thinkClose) - 1

// Feed consumes one chunk of model output and returns the thinking and
// content bytes it can now conclusively classify. Bytes that might still be
// the prefix of a marker are retained in s.pending for the next call.
func (s *tagSplitter) Feed(chunk string) (thinking, content string) {
	buf := s.pending + chunk
	s.pending = ""

	var think, cont strings.Builder
	i := 0
	for i < len(buf) {
		tag := thinkOpen
		if s.inThink {
			tag = thinkClose
		}

		idx := -1
		for j := i; j+len(tag) <= len(buf); j++ {
			if strings.EqualFold(buf[j:j+len(tag)], tag) {
				idx = j - i
				break
			}
		}
		if idx >= 0 {
			seg := buf[i : i+idx]
			if s.inThink {
				think.WriteString(seg)
			} else {
				cont.WriteString(seg)
			}
			i += idx + len(tag)
			s.inThink = !s.inThink
			continue
		}

		// No full match in the remainder. Hold back a tail that could be an
		// in-progress prefix of tag; emit the rest now.
		rem := buf[i:]
		holdFrom := len(rem)
		limit := maxTagLen
		if limit > len(rem) {
			limit = len(rem)
		}
		for n := limit; n > 0; n-- {
			if n <= len(tag) && strings.EqualFold(tag[:n], rem[len(rem)-n:]) {
				holdFrom = len(rem) - n
				break
			}
		}

		emit := rem[:holdFrom]
		if s.inThink {
			think.WriteString(emit)
		} else {
			cont.WriteString(emit)
		}
		s.pending = rem[holdFrom:]
		break
	}

	return think.String(), cont.String()
}

// Flush returns any bytes still held back, classified by the current state.
// Callers should invoke it once the stream ends so a trailing partial tag
// (which was never completed) is not silently dropped.
func (s *tagSplitter) Flush() (thinking, content string) {
	rem := s.pending
	s.pending = ""
	if rem == "" {
		return "", ""
	}
	if s.inThink {
		return rem, ""
	}
	return "", rem
}
