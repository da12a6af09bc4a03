package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/oklog/ulid/v2"
	"github.com/vidquote/transcript-engine/internal/utils"
)

// Profile selects the acquisition quality.
type Profile string

const (
	// ProfileStandard is the default chunked-transcription source.
	ProfileStandard Profile = "standard"
	// ProfileLow is the downgrade path used when chunking is unavailable:
	// smallest possible audio, one single transcription call.
	ProfileLow Profile = "low"
)

// Acquirer obtains a local audio file for a video URL.
type Acquirer interface {
	AcquireAudio(ctx context.Context, url string, sourceID string, profile Profile) (string, error)
}

// YtdlpAcquirer streams audio with yt-dlp through an optional proxy,
// resamples to mono 16 kHz raw PCM with ffmpeg and wraps the result into
// a WAV file. No intermediate media files are written.
type YtdlpAcquirer struct {
	dir      string
	proxyURL string
	timeout  time.Duration
}

// NewYtdlpAcquirer creates a yt-dlp backed audio acquirer
func NewYtdlpAcquirer(dir, proxyURL string) (*YtdlpAcquirer, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	res := &YtdlpAcquirer{dir: dir, proxyURL: proxyURL, timeout: time.Minute * 30}
	goapp.Log.Info().Str("dir", dir).Bool("proxy", proxyURL != "").Msg("Acquirer")
	return res, nil
}

func (sp *YtdlpAcquirer) AcquireAudio(ctx context.Context, url, sourceID string, profile Profile) (string, error) {
	defer utils.MeasureTime("acquireAudio", time.Now())
	ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
	defer cancelF()

	args := []string{"-f", "worstaudio", "--no-warnings", "--quiet", "-o", "-"}
	if profile == ProfileLow {
		args = append(args, "--audio-quality", "9")
	}
	if sp.proxyURL != "" {
		args = append(args, "--proxy", sp.proxyURL)
	}
	args = append(args, url)

	ytCmd := exec.CommandContext(ctx, "yt-dlp", args...)
	ffCmd := exec.CommandContext(ctx, "ffmpeg",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-ac", "1",
		"-ar", "16000",
		"-f", "s16le",
		"-")

	pipe, err := ytCmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("yt-dlp stdout: %w", err)
	}
	ffCmd.Stdin = pipe

	var pcm, ytErr, ffErr bytes.Buffer
	ytCmd.Stderr = &ytErr
	ffCmd.Stdout = &pcm
	ffCmd.Stderr = &ffErr

	if err := ytCmd.Start(); err != nil {
		return "", fmt.Errorf("start yt-dlp: %w", err)
	}
	if err := ffCmd.Start(); err != nil {
		_ = ytCmd.Process.Kill()
		_ = ytCmd.Wait()
		return "", fmt.Errorf("start ffmpeg: %w", err)
	}
	ytWaitErr := ytCmd.Wait()
	ffWaitErr := ffCmd.Wait()
	if ytWaitErr != nil {
		return "", fmt.Errorf("yt-dlp: %w: %s", ytWaitErr, ytErr.String())
	}
	if ffWaitErr != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", ffWaitErr, ffErr.String())
	}
	if pcm.Len() == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	data, err := EncodeWAV(pcm.Bytes())
	if err != nil {
		return "", err
	}
	out := filepath.Join(sp.dir, fmt.Sprintf("%s-%s.wav", sourceID, ulid.Make().String()))
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	goapp.Log.Info().Str("file", out).Int("bytes", len(data)).Msg("audio acquired")
	return out, nil
}
