package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/gorilla/websocket"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vidquote/transcript-engine/internal/api"
	"github.com/vidquote/transcript-engine/internal/db"
	"github.com/vidquote/transcript-engine/internal/domain"
	"github.com/vidquote/transcript-engine/internal/progress"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Runner starts one acquisition job and blocks until it finishes.
type Runner interface {
	Run(ctx context.Context, sourceID, url string) (*domain.Transcript, error)
}

// Data keeps data required for service work
type Data struct {
	Port    int
	Runner  Runner
	Store   db.Store
	Tracker progress.Tracker
	Ctx     context.Context
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) (<-chan struct{}, error) {
	goapp.Log.Info().Msgf("Starting transcript service at %d", data.Port)
	if err := validate(data); err != nil {
		return nil, err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	res := make(chan struct{}, 1)
	go func() {
		defer close(res)
		if err := gracehttp.Serve(e.Server); err != nil {
			goapp.Log.Error().Err(err).Msg("can't start web server")
		}
		goapp.Log.Info().Msg("exit http routine")
	}()
	return res, nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("transcript", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.GET("/live", live(data))
	e.POST("/transcribe", transcribe(data))
	e.GET("/transcript/:id", transcript(data))
	e.GET("/progress/:id", progressPoll(data))
	e.GET("/ws/progress", progressSocket(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

func transcribe(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		var req api.TranscribeRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorMsg{Error: "can't parse request"})
		}
		if req.ID == "" || req.URL == "" {
			return c.JSON(http.StatusBadRequest, api.ErrorMsg{Error: "id and url are required"})
		}
		go func() {
			if _, err := data.Runner.Run(data.Ctx, req.ID, req.URL); err != nil {
				goapp.Log.Error().Err(err).Str("id", req.ID).Msg("job failed")
			}
		}()
		return c.JSON(http.StatusAccepted, api.TranscribeResponse{ID: req.ID})
	}
}

func transcript(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id := c.Param("id")
		tr, err := data.Store.Load(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return c.JSON(http.StatusNotFound, api.ErrorMsg{Error: "no transcript"})
			}
			goapp.Log.Error().Err(err).Str("id", id).Msg("can't load transcript")
			return c.JSON(http.StatusInternalServerError, api.ErrorMsg{Error: "can't load transcript"})
		}
		return c.JSON(http.StatusOK, tr)
	}
}

func progressPoll(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id := c.Param("id")
		p, ok := data.Tracker.GetProgress(id)
		if !ok {
			return c.JSON(http.StatusNotFound, api.ErrorMsg{Error: "no job"})
		}
		return c.JSON(http.StatusOK, api.ProgressMsg{ID: id, Percent: p, Done: p >= 100})
	}
}

func validate(data *Data) error {
	if data.Runner == nil {
		return fmt.Errorf("no Runner")
	}
	if data.Store == nil {
		return fmt.Errorf("no Store")
	}
	if data.Tracker == nil {
		return fmt.Errorf("no Tracker")
	}
	return nil
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

func progressSocket(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id := c.QueryParam("id")
		if id == "" {
			return c.JSON(http.StatusBadRequest, api.ErrorMsg{Error: "id is required"})
		}
		ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return err
		}
		defer ws.Close()

		return pushProgress(data.Ctx, ws, id, data.Tracker)
	}
}
