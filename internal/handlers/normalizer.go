package handlers

import (
	"context"

	"github.com/vidquote/transcript-engine/internal/domain"
)

// Normalizer is the fixed cleanup chain applied to every raw transcript
// segment: number rewriting, then filler removal, then final cleanup.
// It is total: bad input degrades to an empty string, never an error.
type Normalizer struct {
	chain *ListHandler
}

// NewNormalizer assembles the default cleanup chain.
func NewNormalizer() *Normalizer {
	chain := NewListHandler()
	chain.Add(NewNumberRewriter())
	chain.Add(NewFillerRemover())
	chain.Add(NewCleaner())
	return &Normalizer{chain: chain}
}

// Normalize cleans a single text. Empty or all-filler input yields "".
func (sp *Normalizer) Normalize(text string) string {
	return sp.chain.Process(context.Background(), text)
}

// NormalizeSegments maps Normalize over segment texts, dropping segments
// whose normalized text is empty. Surviving segments keep their order
// and timestamps untouched.
func (sp *Normalizer) NormalizeSegments(segments []domain.Segment) []domain.Segment {
	res := make([]domain.Segment, 0, len(segments))
	for _, s := range segments {
		text := sp.Normalize(s.Text)
		if text == "" {
			continue
		}
		s.Text = text
		res = append(res, s)
	}
	return res
}
