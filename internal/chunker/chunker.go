// Package chunker splits normalised document text into bounded-size passages
// suitable for embedding.
//
// Text is split on paragraph breaks first. Paragraphs that exceed the size
// limit are split on sentence boundaries and the sentences are greedily packed
// into chunks. A single sentence that still exceeds the limit is cut into
// fixed-size slices. Sizes are counted in characters (runes).
package chunker

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = 1000

// MinContentLength is the default minimum trimmed length of an emitted chunk.
// Shorter chunks are dropped before embedding.
const MinContentLength = 10

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+\s+`)
)

// Chunker splits text into chunks of at most Size characters.
type Chunker struct {
	size       int
	minContent int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithMinContent sets the minimum trimmed length of emitted chunks.
// Zero keeps every non-blank chunk.
func WithMinContent(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minContent = n
		}
	}
}

// New creates a Chunker. A non-positive chunk size is rejected.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:       DefaultChunkSize,
		minContent: MinContentLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, c.size)
	}
	return c, nil
}

// Size returns the maximum chunk size.
func (c *Chunker) Size() int {
	return c.size
}

// Split returns a lazy sequence of chunks for text.
func (c *Chunker) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		emit := func(s string) bool {
			if utf8.RuneCountInString(strings.TrimSpace(s)) < max(c.minContent, 1) {
				return true
			}
			return yield(s)
		}
		for _, para := range paragraphBreak.Split(text, -1) {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			if utf8.RuneCountInString(para) <= c.size {
				if !emit(para) {
					return
				}
				continue
			}
			if !c.splitParagraph(para, emit) {
				return
			}
		}
	}
}

// Chunks collects Split into a slice.
func (c *Chunker) Chunks(text string) []string {
	var out []string
	for chunk := range c.Split(text) {
		out = append(out, chunk)
	}
	return out
}

// splitParagraph packs the sentences of an oversized paragraph into chunks.
// It returns false when the consumer stopped iteration.
func (c *Chunker) splitParagraph(para string, emit func(string) bool) bool {
	var buf string
	flush := func() bool {
		b := strings.TrimSpace(buf)
		buf = ""
		if b == "" {
			return true
		}
		return emit(b)
	}

	for _, sentence := range sentences(para) {
		if utf8.RuneCountInString(strings.TrimSpace(buf+sentence)) <= c.size {
			buf += sentence
			continue
		}
		if !flush() {
			return false
		}
		s := strings.TrimSpace(sentence)
		if utf8.RuneCountInString(s) <= c.size {
			buf = sentence
			continue
		}
		for _, slice := range hardSplit(s, c.size) {
			if !emit(slice) {
				return false
			}
		}
	}
	return flush()
}

// sentences splits para after each run of terminators followed by whitespace.
// The pieces concatenate back to para.
func sentences(para string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(para, -1) {
		out = append(out, para[start:loc[1]])
		start = loc[1]
	}
	if start < len(para) {
		out = append(out, para[start:])
	}
	return out
}

// hardSplit cuts s into slices of exactly size runes; the last may be shorter.
func hardSplit(s string, size int) []string {
	runes := []rune(s)
	out := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		out = append(out, string(runes[i:end]))
	}
	return out
}

// Split returns a lazy sequence of chunks of at most maxChunkSize characters
// using the default minimum content length.
func Split(text string, maxChunkSize int) (iter.Seq[string], error) {
	c, err := New(WithChunkSize(maxChunkSize))
	if err != nil {
		return nil, err
	}
	return c.Split(text), nil
}

// Chunks is Split collected into a slice.
func Chunks(text string, maxChunkSize int) ([]string, error) {
	c, err := New(WithChunkSize(maxChunkSize))
	if err != nil {
		return nil, err
	}
	return c.Chunks(text), nil
}
