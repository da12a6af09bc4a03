package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/oklog/ulid/v2"
)

// ErrChunkingUnavailable means the environment cannot split media.
// Callers must downgrade to a whole-file strategy, not retry.
var ErrChunkingUnavailable = errors.New("media chunking unavailable")

// Splitter cuts a time slice out of a media file.
type Splitter interface {
	Available() bool
	Split(ctx context.Context, mediaPath string, offsetSec, durSec float64) (string, error)
}

// FFmpegSplitter extracts chunks with ffmpeg -ss/-t.
type FFmpegSplitter struct {
	dir string
}

// NewFFmpegSplitter creates an ffmpeg chunk splitter
func NewFFmpegSplitter(dir string) *FFmpegSplitter {
	if dir == "" {
		dir = os.TempDir()
	}
	return &FFmpegSplitter{dir: dir}
}

func (sp *FFmpegSplitter) Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

func (sp *FFmpegSplitter) Split(ctx context.Context, mediaPath string, offsetSec, durSec float64) (string, error) {
	if !sp.Available() {
		return "", ErrChunkingUnavailable
	}
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	out := filepath.Join(sp.dir, fmt.Sprintf("%s-chunk-%s.wav", base, ulid.Make().String()))

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-loglevel", "error",
		"-ss", strconv.FormatFloat(offsetSec, 'f', 3, 64),
		"-t", strconv.FormatFloat(durSec, 'f', 3, 64),
		"-i", mediaPath,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	if outBytes, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg split: %w: %s", err, outBytes)
	}
	goapp.Log.Debug().Str("file", out).Float64("offset", offsetSec).Msg("chunk extracted")
	return out, nil
}
