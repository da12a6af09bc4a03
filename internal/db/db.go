package db

import (
	"context"
	"errors"

	"github.com/vidquote/transcript-engine/internal/domain"
)

// ErrNotFound means no transcript is stored for the requested source.
var ErrNotFound = errors.New("transcript not found")

// Store persists finished transcripts keyed by source ID.
type Store interface {
	Save(ctx context.Context, tr *domain.Transcript) error
	Load(ctx context.Context, sourceID string) (*domain.Transcript, error)
}
