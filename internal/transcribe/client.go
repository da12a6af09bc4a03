package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vidquote/transcript-engine/internal/captions"
	"github.com/vidquote/transcript-engine/internal/domain"
	"github.com/vidquote/transcript-engine/internal/utils"
)

// Result is a timestamped speech-to-text output.
type Result struct {
	Segments []domain.Segment
	Words    []domain.Word
}

// Client transcribes a single bounded-size media file.
type Client interface {
	Transcribe(ctx context.Context, mediaPath string) (*Result, error)
}

// HTTPClient talks to a whisper-style transcription API: multipart file
// upload, verbose JSON response with segment and word timings.
type HTTPClient struct {
	httpclient *http.Client
	getURL     string
	key        string
	model      string
	timeout    time.Duration
}

// NewHTTPClient creates a speech-to-text client
func NewHTTPClient(getURL, key string, timeout time.Duration) (*HTTPClient, error) {
	res := HTTPClient{}
	if getURL == "" {
		return nil, fmt.Errorf("no getURL")
	}
	res.getURL = getURL
	res.key = key
	res.model = "whisper-1"
	if timeout <= 0 {
		timeout = time.Minute * 20
	}
	res.timeout = timeout
	res.httpclient = utils.NewHTTPClient()
	goapp.Log.Info().Str("url", getURL).Dur("timeout", timeout).Msg("SpeechClient")
	return &res, nil
}

type apiSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type apiWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

type apiResponse struct {
	Text     string       `json:"text"`
	Segments []apiSegment `json:"segments"`
	Words    []apiWord    `json:"words"`
}

func (sp *HTTPClient) Transcribe(ctx context.Context, mediaPath string) (*Result, error) {
	defer utils.MeasureTime("transcribe", time.Now())
	ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
	defer cancelF()

	body, contentType, err := sp.makeBody(mediaPath)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sp.getURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if sp.key != "" {
		req.Header.Set("Authorization", "Bearer "+sp.key)
	}
	resp, err := sp.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1000))
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &utils.HTTPStatusError{StatusCode: resp.StatusCode}
	}
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		return nil, fmt.Errorf("can't invoke '%s': %w", sp.getURL, err)
	}
	res := &apiResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return mapResponse(res), nil
}

func (sp *HTTPClient) makeBody(mediaPath string) (io.Reader, string, error) {
	f, err := os.Open(mediaPath)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", mediaPath, err)
	}
	defer f.Close()

	b := new(bytes.Buffer)
	mw := multipart.NewWriter(b)
	if err := mw.WriteField("model", sp.model); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("timestamp_granularities[]", "word"); err != nil {
		return nil, "", err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(mediaPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return b, mw.FormDataContentType(), nil
}

func mapResponse(resp *apiResponse) *Result {
	res := &Result{}
	for _, s := range resp.Segments {
		res.Segments = append(res.Segments, domain.Segment{
			Speaker: captions.PlaceholderSpeaker,
			Start:   s.Start,
			End:     s.End,
			Text:    s.Text,
		})
	}
	for _, w := range resp.Words {
		res.Words = append(res.Words, domain.Word{
			Text: w.Word, Start: w.Start, End: w.End, Confidence: w.Probability})
	}
	if len(res.Segments) == 0 && resp.Text != "" {
		// no segment timings, the synthesized segment has to span the words
		end := 0.0
		for _, w := range res.Words {
			if w.End > end {
				end = w.End
			}
		}
		res.Segments = append(res.Segments, domain.Segment{
			Speaker: captions.PlaceholderSpeaker, End: end, Text: resp.Text})
	}
	return res
}
