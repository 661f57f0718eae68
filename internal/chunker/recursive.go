// Package chunker splits plain text into bounded, overlapping chunks for
// embedding and retrieval.
package chunker

import (
	"strings"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// defaultSeparators are tried in order: paragraph break, line break,
// sentence terminator, whitespace.
var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// RecursiveSplitter splits text on a cascading separator list, falling back
// to the next separator only when a segment still exceeds the chunk size.
// Splitting is deterministic: identical input and parameters always produce
// the identical chunk sequence.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the splitter.
type Option func(*RecursiveSplitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *RecursiveSplitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *RecursiveSplitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *RecursiveSplitter {
	s := &RecursiveSplitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: defaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Overlap must stay strictly below the chunk size.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	return s
}

// Split returns the ordered chunk sequence for text. Whitespace-only input
// yields no chunks. Each chunk is at most chunkSize characters, except for a
// single token longer than chunkSize that no separator can break.
func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	sep := ""
	remaining := separators
	for i, candidate := range separators {
		if strings.Contains(text, candidate) {
			sep = candidate
			remaining = separators[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		// Single unsplittable run. Cut into fixed overlapping windows.
		return s.hardCut(text)
	}
	parts = strings.SplitAfter(text, sep)

	var chunks []string
	var pending []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) <= s.chunkSize {
			pending = append(pending, part)
			continue
		}
		// Oversized segment: flush what we have, then recurse with the
		// finer separators.
		chunks = append(chunks, s.merge(pending)...)
		pending = nil
		chunks = append(chunks, s.split(part, remaining)...)
	}
	return append(chunks, s.merge(pending)...)
}

// merge joins consecutive segments into chunks no larger than chunkSize,
// carrying the trailing `overlap` characters of segments into the next chunk.
func (s *RecursiveSplitter) merge(parts []string) []string {
	var chunks []string
	var window []string
	total := 0

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, part := range parts {
		if total > 0 && total+len(part) > s.chunkSize {
			flush()
			// Keep trailing segments within the overlap budget, and make
			// room so the incoming segment fits the size bound.
			for len(window) > 0 && (total > s.overlap || total+len(part) > s.chunkSize) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, part)
		total += len(part)
	}
	if len(window) > 0 {
		flush()
	}
	return chunks
}

// hardCut slices text into fixed windows with overlap, used when no separator
// applies. Stride is chunkSize-overlap so coverage is preserved.
func (s *RecursiveSplitter) hardCut(text string) []string {
	if len(text) <= s.chunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	stride := s.chunkSize - s.overlap
	var chunks []string
	for start := 0; start < len(text); start += stride {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}
