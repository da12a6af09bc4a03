package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vidquote/transcript-engine/internal/db"
	"github.com/vidquote/transcript-engine/internal/diarize"
	"github.com/vidquote/transcript-engine/internal/domain"
	"github.com/vidquote/transcript-engine/internal/handlers"
	"github.com/vidquote/transcript-engine/internal/progress"
	"github.com/vidquote/transcript-engine/internal/transcribe"
	"github.com/vidquote/transcript-engine/internal/utils"
)

// ErrAllStrategiesFailed is terminal: every acquisition method returned
// nothing. Distinguishable from "succeeded with an empty transcript",
// which cannot happen — success implies at least one segment.
var ErrAllStrategiesFailed = errors.New("all acquisition strategies failed")

// Job is the per-request context handed to strategies.
type Job struct {
	SourceID string
	URL      string
	VideoID  string
	Progress transcribe.ProgressFunc
}

// Strategy is one self-contained transcript acquisition method.
// Attempt returns (nil, nil) or an empty result when the method has
// nothing to offer, an error when it failed. Both advance the engine to
// the next strategy.
type Strategy interface {
	Name() string
	Available() bool
	Attempt(ctx context.Context, job *Job) (*transcribe.Result, error)
}

// Engine tries strategies in priority order until one yields a
// non-empty transcript after cleanup and diarization. The winning
// result is persisted exactly once. Callers never learn which strategy
// ran, the output shape is always the same.
type Engine struct {
	strategies []Strategy
	normalizer *handlers.Normalizer
	diarizer   diarize.Diarizer
	store      db.Store
	tracker    progress.Tracker
	retention  time.Duration
}

// progressRetention keeps the final percent readable for polls after
// success, then the entry expires so the map stays bounded.
const progressRetention = 10 * time.Minute

// NewEngine creates an acquisition engine
func NewEngine(strategies []Strategy, diarizer diarize.Diarizer, store db.Store, tracker progress.Tracker) (*Engine, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("no strategies")
	}
	if diarizer == nil {
		return nil, fmt.Errorf("no diarizer")
	}
	if store == nil {
		return nil, fmt.Errorf("no store")
	}
	if tracker == nil {
		return nil, fmt.Errorf("no tracker")
	}
	res := &Engine{strategies: strategies, normalizer: handlers.NewNormalizer(),
		diarizer: diarizer, store: store, tracker: tracker,
		retention: progressRetention}
	for _, s := range strategies {
		goapp.Log.Info().Str("strategy", s.Name()).Bool("available", s.Available()).Msg("engine")
	}
	return res, nil
}

// Run acquires, cleans, diarizes and persists a transcript for url.
// Returns ErrAllStrategiesFailed when no method produced segments.
func (e *Engine) Run(ctx context.Context, sourceID, url string) (*domain.Transcript, error) {
	defer utils.MeasureTime("acquire", time.Now())
	videoID, err := domain.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}
	e.tracker.SetProgress(sourceID, 5)
	job := &Job{SourceID: sourceID, URL: url, VideoID: videoID,
		Progress: func(percent int) { e.tracker.SetProgress(sourceID, percent) }}

	for _, s := range e.strategies {
		if ctx.Err() != nil {
			e.tracker.Clear(sourceID)
			return nil, ctx.Err()
		}
		if !s.Available() {
			continue
		}
		goapp.Log.Info().Str("strategy", s.Name()).Str("id", sourceID).Msg("trying")
		raw, err := s.Attempt(ctx, job)
		if err != nil {
			goapp.Log.Warn().Err(err).Str("strategy", s.Name()).Msg("strategy failed")
			continue
		}
		if raw == nil || len(raw.Segments) == 0 {
			goapp.Log.Info().Str("strategy", s.Name()).Msg("strategy empty")
			continue
		}
		tr := e.postProcess(ctx, sourceID, raw)
		if tr == nil {
			goapp.Log.Info().Str("strategy", s.Name()).Msg("empty after cleanup")
			continue
		}
		e.tracker.SetProgress(sourceID, 90)
		if err := e.store.Save(ctx, tr); err != nil {
			e.tracker.Clear(sourceID)
			return nil, fmt.Errorf("save transcript: %w", err)
		}
		e.tracker.SetProgress(sourceID, 100)
		time.AfterFunc(e.retention, func() { e.tracker.Clear(sourceID) })
		goapp.Log.Info().Str("strategy", s.Name()).Str("id", sourceID).
			Int("segments", len(tr.Segments)).Msg("done")
		return tr, nil
	}
	e.tracker.Clear(sourceID)
	return nil, ErrAllStrategiesFailed
}

// postProcess runs the common cleanup pipeline. Returns nil when no
// segment survives normalization.
func (e *Engine) postProcess(ctx context.Context, sourceID string, raw *transcribe.Result) *domain.Transcript {
	segments := e.normalizer.NormalizeSegments(raw.Segments)
	if len(segments) == 0 {
		return nil
	}
	segments = e.diarizer.Diarize(ctx, segments)
	return &domain.Transcript{
		SourceID: sourceID,
		Segments: segments,
		Words:    domain.FilterWords(raw.Words, segments),
		Speakers: domain.RosterFromSegments(segments),
	}
}
