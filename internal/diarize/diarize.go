package diarize

import (
	"context"

	"github.com/vidquote/transcript-engine/internal/domain"
)

// Diarizer assigns speaker labels to transcript segments.
type Diarizer interface {
	Diarize(ctx context.Context, segments []domain.Segment) []domain.Segment
}

// Noop leaves labels untouched.
type Noop struct{}

func (Noop) Diarize(ctx context.Context, segments []domain.Segment) []domain.Segment {
	return segments
}
