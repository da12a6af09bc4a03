package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vidquote/transcript-engine/internal/captions"
	"github.com/vidquote/transcript-engine/internal/domain"
	"github.com/vidquote/transcript-engine/internal/media"
	"github.com/vidquote/transcript-engine/internal/transcribe"
	"github.com/vidquote/transcript-engine/internal/utils"
)

// CaptionStrategy fetches provider caption tracks and parses them,
// trying each language/format combination until one yields segments.
type CaptionStrategy struct {
	fetcher captions.Fetcher
	langs   []string
}

// NewCaptionStrategy creates a caption-track strategy
func NewCaptionStrategy(fetcher captions.Fetcher, langs []string) *CaptionStrategy {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &CaptionStrategy{fetcher: fetcher, langs: langs}
}

func (sp *CaptionStrategy) Name() string { return "captions" }

func (sp *CaptionStrategy) Available() bool { return sp.fetcher != nil }

func (sp *CaptionStrategy) Attempt(ctx context.Context, job *Job) (*transcribe.Result, error) {
	var lastErr error
	for _, lang := range sp.langs {
		for _, format := range []string{"vtt", ""} {
			track, err := sp.fetcher.Fetch(ctx, job.VideoID, lang, format)
			if err != nil {
				if errors.Is(err, captions.ErrNotFound) {
					continue
				}
				lastErr = err
				continue
			}
			segments := parseTrack(track)
			if len(segments) > 0 {
				goapp.Log.Debug().Str("lang", lang).Str("format", track.Format).
					Int("segments", len(segments)).Msg("captions parsed")
				return &transcribe.Result{Segments: segments}, nil
			}
		}
	}
	return nil, lastErr
}

func parseTrack(track *captions.Track) []domain.Segment {
	if track.Format == "vtt" {
		return captions.ParseWebVTT(track.Content)
	}
	return captions.ParseTimedText(track.Content)
}

// HostedStrategy queries an external transcript-hosting API that may
// already have a transcript for the video.
type HostedStrategy struct {
	httpclient *http.Client
	getURL     string
	timeout    time.Duration
}

// NewHostedStrategy creates a hosted-transcript strategy. An empty URL
// leaves the strategy unavailable.
func NewHostedStrategy(getURL string) *HostedStrategy {
	if getURL == "" {
		return &HostedStrategy{}
	}
	goapp.Log.Info().Str("url", getURL).Msg("HostedTranscripts")
	return &HostedStrategy{getURL: getURL, timeout: time.Second * 30,
		httpclient: utils.NewHTTPClient()}
}

func (sp *HostedStrategy) Name() string { return "hostedAPI" }

func (sp *HostedStrategy) Available() bool { return sp.getURL != "" }

type hostedSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type hostedResponse struct {
	Segments []hostedSegment `json:"segments"`
}

func (sp *HostedStrategy) Attempt(ctx context.Context, job *Job) (*transcribe.Result, error) {
	ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
	defer cancelF()

	reqURL := fmt.Sprintf("%s/%s", sp.getURL, job.VideoID)
	resp, err := utils.RetryHTTP(ctx, utils.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		return sp.httpclient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("can't invoke '%s': %w", reqURL, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1000))
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		return nil, fmt.Errorf("can't invoke '%s': %w", reqURL, err)
	}
	res := &hostedResponse{}
	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		return nil, err
	}
	out := &transcribe.Result{}
	for _, s := range res.Segments {
		out.Segments = append(out.Segments, domain.Segment{
			Speaker: captions.PlaceholderSpeaker, Start: s.Start, End: s.End, Text: s.Text})
	}
	return out, nil
}

// SpeechStrategy downloads the audio and runs chunked speech-to-text.
// When the environment cannot split media it downgrades: re-acquires at
// the lowest quality and makes one whole-file transcription call.
type SpeechStrategy struct {
	acquirer media.Acquirer
	chunked  *transcribe.ChunkedTranscriber
	client   transcribe.Client
}

// NewSpeechStrategy creates a speech-to-text strategy. A nil client
// leaves the strategy unavailable.
func NewSpeechStrategy(acquirer media.Acquirer, chunked *transcribe.ChunkedTranscriber, client transcribe.Client) *SpeechStrategy {
	return &SpeechStrategy{acquirer: acquirer, chunked: chunked, client: client}
}

func (sp *SpeechStrategy) Name() string { return "speechToText" }

func (sp *SpeechStrategy) Available() bool {
	return sp.acquirer != nil && sp.client != nil && sp.chunked != nil
}

func (sp *SpeechStrategy) Attempt(ctx context.Context, job *Job) (*transcribe.Result, error) {
	wavPath, err := sp.acquirer.AcquireAudio(ctx, job.URL, job.SourceID, media.ProfileStandard)
	if err != nil {
		return nil, fmt.Errorf("acquire audio: %w", err)
	}
	defer removeFile(wavPath)

	duration, err := media.WavDuration(wavPath)
	if err != nil {
		return nil, fmt.Errorf("probe duration: %w", err)
	}
	res, err := sp.chunked.Transcribe(ctx, wavPath, duration, job.Progress)
	if errors.Is(err, media.ErrChunkingUnavailable) {
		goapp.Log.Warn().Str("id", job.SourceID).Msg("chunking unavailable, downgrading")
		return sp.wholeFile(ctx, job)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// wholeFile is the low-fidelity path: smallest audio, single call.
func (sp *SpeechStrategy) wholeFile(ctx context.Context, job *Job) (*transcribe.Result, error) {
	wavPath, err := sp.acquirer.AcquireAudio(ctx, job.URL, job.SourceID, media.ProfileLow)
	if err != nil {
		return nil, fmt.Errorf("acquire audio: %w", err)
	}
	defer removeFile(wavPath)
	return sp.client.Transcribe(ctx, wavPath)
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		goapp.Log.Warn().Err(err).Str("file", path).Msg("can't delete file")
	}
}

// SyntheticStrategy is the last resort: a deterministic, clearly
// fabricated transcript so downstream views have something to render
// when every real method is unavailable.
type SyntheticStrategy struct{}

func NewSyntheticStrategy() *SyntheticStrategy { return &SyntheticStrategy{} }

func (sp *SyntheticStrategy) Name() string { return "synthetic" }

func (sp *SyntheticStrategy) Available() bool { return true }

func (sp *SyntheticStrategy) Attempt(ctx context.Context, job *Job) (*transcribe.Result, error) {
	return &transcribe.Result{Segments: []domain.Segment{
		{Speaker: captions.PlaceholderSpeaker, Start: 0, End: 5,
			Text: "Automatic transcript could not be retrieved for video " + job.VideoID + "."},
		{Speaker: captions.PlaceholderSpeaker, Start: 5, End: 10,
			Text: "This placeholder text was generated without listening to the source."},
	}}, nil
}
