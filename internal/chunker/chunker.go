// Package chunker provides a deterministic, token-bounded text chunker.
//
// Boundaries prefer paragraph breaks, then line breaks; a token is never
// split. Identical input always yields an identical chunk sequence, which is
// what makes re-ingestion idempotent.
package chunker

import (
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// DefaultMaxTokens is the default chunk size in word tokens.
const DefaultMaxTokens = 200

// DefaultOverlapTokens is the default token overlap carried between
// consecutive chunks when a paragraph has to be split mid-way.
const DefaultOverlapTokens = 20

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits text into bounded spans.
type Chunker struct {
	maxTokens int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxTokens sets the maximum tokens per chunk.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithOverlap sets the token overlap used when splitting inside a paragraph.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlapTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Overlap must leave room for forward progress.
	if c.overlap >= c.maxTokens {
		c.overlap = c.maxTokens / 4
	}
	return c
}

// Split returns the ordered chunk spans for text.
// Empty or whitespace-only input yields no spans.
func (c *Chunker) Split(text string) []driven.ChunkSpan {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}

	var spans []driven.ChunkSpan
	emit := func(s string) {
		spans = append(spans, driven.ChunkSpan{
			Text:       s,
			TokenCount: tokens(s),
		})
	}

	// Pack whole paragraphs while they fit; oversized paragraphs are split
	// on their own so packing never mixes overlap regions with neighbours.
	var pack []string
	packTokens := 0
	flush := func() {
		if len(pack) > 0 {
			emit(strings.Join(pack, "\n\n"))
			pack = nil
			packTokens = 0
		}
	}

	for _, para := range paragraphs(cleaned) {
		pt := tokens(para)
		if pt > c.maxTokens {
			flush()
			for _, block := range c.splitParagraph(para) {
				emit(block)
			}
			continue
		}
		if packTokens > 0 && packTokens+pt > c.maxTokens {
			flush()
		}
		pack = append(pack, para)
		packTokens += pt
	}
	flush()

	return spans
}

// splitParagraph breaks an oversized paragraph on line boundaries, falling
// back to token windows for single lines that still exceed the bound.
func (c *Chunker) splitParagraph(para string) []string {
	var blocks []string
	var group []string
	groupTokens := 0
	flush := func() {
		if len(group) > 0 {
			blocks = append(blocks, strings.Join(group, "\n"))
			group = nil
			groupTokens = 0
		}
	}

	for _, line := range strings.Split(para, "\n") {
		lt := tokens(line)
		if lt > c.maxTokens {
			flush()
			blocks = append(blocks, c.windows(line)...)
			continue
		}
		if groupTokens > 0 && groupTokens+lt > c.maxTokens {
			flush()
		}
		group = append(group, line)
		groupTokens += lt
	}
	flush()

	return blocks
}

// windows splits a single oversized line into token-bounded word windows
// with c.overlap tokens carried between consecutive windows. Words are
// never broken, so a single word longer than the bound becomes its own
// window.
func (c *Chunker) windows(line string) []string {
	words := strings.Fields(line)
	var out []string

	start := 0
	for start < len(words) {
		end := start
		count := 0
		for end < len(words) {
			wt := tokens(words[end])
			if end > start && count+wt > c.maxTokens {
				break
			}
			count += wt
			end++
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}

		// Step back by roughly c.overlap tokens, always advancing.
		next := end
		back := 0
		for next > start+1 && back < c.overlap {
			next--
			back += tokens(words[next])
		}
		start = next
	}

	return out
}

func paragraphs(text string) []string {
	var out []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			out = append(out, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return out
}

func tokens(s string) int {
	return len(domain.Tokenize(s))
}
