package transcribe

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vidquote/transcript-engine/internal/domain"
	"github.com/vidquote/transcript-engine/internal/media"
	"github.com/vidquote/transcript-engine/internal/utils"
)

// ChunkSeconds is the fixed chunk length for long media.
const ChunkSeconds = 360

// Progress band occupied by the chunk phase on the overall 0-100 scale.
const (
	chunkBandStart = 60
	chunkBandWidth = 15
)

// ProgressFunc receives coarse percent-complete updates.
type ProgressFunc func(percent int)

// ChunkedTranscriber splits long media into fixed-length chunks,
// transcribes them with bounded concurrency and merges the per-chunk
// results into one global timeline. A chunk that fails after retries
// fails the whole operation: a silent gap in the middle of a transcript
// is worse than an explicit failure.
type ChunkedTranscriber struct {
	client      Client
	splitter    media.Splitter
	concurrency int
	retryCfg    utils.RetryConfig
}

// NewChunkedTranscriber creates a chunked transcriber.
// Concurrency is clamped to [2, 6].
func NewChunkedTranscriber(client Client, splitter media.Splitter, concurrency int) (*ChunkedTranscriber, error) {
	if client == nil {
		return nil, fmt.Errorf("no client")
	}
	if splitter == nil {
		return nil, fmt.Errorf("no splitter")
	}
	if concurrency < 2 {
		concurrency = 2
	}
	if concurrency > 6 {
		concurrency = 6
	}
	res := &ChunkedTranscriber{client: client, splitter: splitter,
		concurrency: concurrency, retryCfg: utils.ChunkRetryConfig}
	goapp.Log.Info().Int("concurrency", concurrency).Msg("ChunkedTranscriber")
	return res, nil
}

type chunk struct {
	index     int
	offsetSec float64
	result    *Result
}

// Transcribe processes mediaPath in ChunkSeconds slices. durationHint
// may be zero, the media duration is then probed from the file.
func (sp *ChunkedTranscriber) Transcribe(ctx context.Context, mediaPath string, durationHint float64, progress ProgressFunc) (*Result, error) {
	defer utils.MeasureTime("chunkedTranscribe", time.Now())
	if !sp.splitter.Available() {
		return nil, media.ErrChunkingUnavailable
	}
	duration := durationHint
	if duration <= 0 {
		var err error
		duration, err = media.WavDuration(mediaPath)
		if err != nil {
			return nil, fmt.Errorf("probe duration: %w", err)
		}
	}
	total := int(math.Ceil(duration / ChunkSeconds))
	if total < 1 {
		total = 1
	}
	goapp.Log.Info().Int("chunks", total).Float64("duration", duration).Msg("chunking")

	chunks := make([]*chunk, total)
	for i := 0; i < total; i++ {
		chunks[i] = &chunk{index: i, offsetSec: float64(i) * ChunkSeconds}
	}

	var done atomic.Int32
	onChunkDone := func() {
		completed := int(done.Add(1))
		if progress != nil {
			progress(chunkBandStart + completed*chunkBandWidth/total)
		}
	}
	for from := 0; from < total; from += sp.concurrency {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		to := from + sp.concurrency
		if to > total {
			to = total
		}
		if err := sp.runBatch(ctx, mediaPath, chunks[from:to], onChunkDone); err != nil {
			return nil, err
		}
	}

	// merge in chunk index order, not completion order
	res := &Result{}
	for _, c := range chunks {
		for _, s := range c.result.Segments {
			s.Start += c.offsetSec
			s.End += c.offsetSec
			res.Segments = append(res.Segments, s)
		}
		for _, w := range c.result.Words {
			w.Start += c.offsetSec
			w.End += c.offsetSec
			res.Words = append(res.Words, w)
		}
	}
	domain.SortSegments(res.Segments)
	domain.SortWords(res.Words)
	return res, nil
}

// runBatch transcribes one batch of chunks concurrently and awaits all of
// them. The first chunk error fails the batch.
func (sp *ChunkedTranscriber) runBatch(ctx context.Context, mediaPath string, batch []*chunk, onChunkDone func()) error {
	wg := &sync.WaitGroup{}
	errs := make([]error, len(batch))
	for i, c := range batch {
		wg.Add(1)
		go func(i int, c *chunk) {
			defer wg.Done()
			if errs[i] = sp.processChunk(ctx, mediaPath, c); errs[i] == nil {
				onChunkDone()
			}
		}(i, c)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// processChunk extracts, transcribes (with retry) and always deletes the
// chunk media, whatever the outcome.
func (sp *ChunkedTranscriber) processChunk(ctx context.Context, mediaPath string, c *chunk) error {
	chunkPath, err := sp.splitter.Split(ctx, mediaPath, c.offsetSec, ChunkSeconds)
	if err != nil {
		return fmt.Errorf("split chunk %d: %w", c.index, err)
	}
	defer func() {
		if err := os.Remove(chunkPath); err != nil && !os.IsNotExist(err) {
			goapp.Log.Warn().Err(err).Str("file", chunkPath).Msg("can't delete chunk")
		}
	}()

	res, err := utils.RetryDo(ctx, sp.retryCfg, func() (*Result, error) {
		return sp.client.Transcribe(ctx, chunkPath)
	})
	if err != nil {
		return fmt.Errorf("transcribe chunk %d: %w", c.index, err)
	}
	c.result = res
	goapp.Log.Debug().Int("chunk", c.index).Int("segments", len(res.Segments)).Msg("chunk done")
	return nil
}
