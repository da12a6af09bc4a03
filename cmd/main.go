package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/vidquote/transcript-engine/internal/captions"
	"github.com/vidquote/transcript-engine/internal/db"
	"github.com/vidquote/transcript-engine/internal/diarize"
	"github.com/vidquote/transcript-engine/internal/engine"
	"github.com/vidquote/transcript-engine/internal/media"
	"github.com/vidquote/transcript-engine/internal/progress"
	"github.com/vidquote/transcript-engine/internal/service"
	"github.com/vidquote/transcript-engine/internal/transcribe"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var store db.Store
	var tracker progress.Tracker
	if redisURL := cfg.GetString("redis.url"); redisURL != "" {
		redisStore, err := db.NewRedisStore(redisURL, cfg.GetString("redis.key"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init redis store")
		}
		defer redisStore.Close()
		redisTracker, err := progress.NewRedisTracker(redisURL)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init redis tracker")
		}
		defer redisTracker.Close()
		store, tracker = redisStore, redisTracker
	} else {
		goapp.Log.Warn().Msg("no redis.url, using in-memory storage")
		store, tracker = db.NewMemoryStore(), progress.NewMemTracker()
	}

	var fetcher captions.Fetcher
	if captionsURL := cfg.GetString("captions.url"); captionsURL != "" {
		f, err := captions.NewHTTPFetcher(captionsURL)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init caption fetcher")
		}
		fetcher = f
	}
	var langs []string
	for _, l := range strings.Split(cfg.GetString("langs"), ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}

	strategies := []engine.Strategy{
		engine.NewCaptionStrategy(fetcher, langs),
		engine.NewHostedStrategy(cfg.GetString("transcriptapi.url")),
	}
	if speechURL := cfg.GetString("speech.url"); speechURL != "" {
		client, err := transcribe.NewHTTPClient(speechURL, cfg.GetString("speech.key"),
			time.Minute*time.Duration(cfg.GetInt("chunk.timeoutMin")))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init speech client")
		}
		acquirer, err := media.NewYtdlpAcquirer(cfg.GetString("media.dir"), cfg.GetString("proxy.url"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init acquirer")
		}
		splitter := media.NewFFmpegSplitter(cfg.GetString("media.dir"))
		chunked, err := transcribe.NewChunkedTranscriber(client, splitter, cfg.GetInt("chunk.concurrency"))
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init chunked transcriber")
		}
		strategies = append(strategies, engine.NewSpeechStrategy(acquirer, chunked, client))
	} else {
		goapp.Log.Warn().Msg("no speech.url, speech-to-text disabled")
	}
	strategies = append(strategies, engine.NewSyntheticStrategy())

	eng, err := engine.NewEngine(strategies, diarize.NewHeuristic(), store, tracker)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init engine")
	}

	data := &service.Data{}
	data.Ctx = ctx
	data.Port = cfg.GetInt("port")
	data.Runner = eng
	data.Store = store
	data.Tracker = tracker

	doneCh, err := service.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}

	/////////////////////// Waiting for terminate
	waitCh := make(chan os.Signal, 2)
	signal.Notify(waitCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-waitCh:
		goapp.Log.Info().Msg("Got exit signal")
	case <-doneCh:
		goapp.Log.Info().Msg("Service exit")
	}
	cancelFunc()
	select {
	case <-doneCh:
		goapp.Log.Info().Msg("All code returned. Now exit. Bye")
	case <-time.After(time.Second * 15):
		goapp.Log.Warn().Msg("Timeout gracefull shutdown")
	}
}

var (
	version = "DEV"
)

func printBanner() {
	banner :=
		`
    TRANSCRIPT ENGINE v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/vidquote/transcript-engine"))
}
