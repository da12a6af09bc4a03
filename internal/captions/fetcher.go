package captions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vidquote/transcript-engine/internal/utils"
)

// ErrNotFound means the video has no caption track for the requested
// language/format combination.
var ErrNotFound = errors.New("caption track not found")

// Track is a raw caption payload with its declared language and format.
type Track struct {
	Lang    string
	Format  string
	Content string
}

// Fetcher obtains a raw caption track for a video.
type Fetcher interface {
	Fetch(ctx context.Context, videoID, lang, format string) (*Track, error)
}

// HTTPFetcher fetches caption tracks from the timedtext endpoint.
type HTTPFetcher struct {
	httpclient *http.Client
	getURL     string
	timeout    time.Duration
}

// NewHTTPFetcher creates a caption track fetcher
func NewHTTPFetcher(getURL string) (*HTTPFetcher, error) {
	res := HTTPFetcher{}
	if getURL == "" {
		return nil, fmt.Errorf("no getURL")
	}
	res.getURL = getURL
	res.timeout = time.Second * 20
	res.httpclient = utils.NewHTTPClient()
	goapp.Log.Info().Str("url", getURL).Msg("CaptionFetcher")
	return &res, nil
}

func (sp *HTTPFetcher) Fetch(ctx context.Context, videoID, lang, format string) (*Track, error) {
	ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
	defer cancelF()

	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", lang)
	if format != "" {
		q.Set("fmt", format)
	}
	reqURL := sp.getURL + "?" + q.Encode()

	resp, err := utils.RetryHTTP(ctx, utils.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
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
		return nil, ErrNotFound
	}
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		return nil, fmt.Errorf("can't invoke '%s': %w", reqURL, err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	// The endpoint answers 200 with an empty body when no track exists.
	if len(body) == 0 {
		return nil, ErrNotFound
	}
	return &Track{Lang: lang, Format: format, Content: string(body)}, nil
}
