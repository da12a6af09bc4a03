package service

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/gorilla/websocket"
	"github.com/vidquote/transcript-engine/internal/api"
	"github.com/vidquote/transcript-engine/internal/progress"
)

var wsPushInterval = 500 * time.Millisecond

// pushProgress writes percent updates for one job to the socket until
// the job reaches 100, its tracker entry disappears (terminal failure)
// or the client goes away. Unchanged percents are not re-sent.
func pushProgress(ctx context.Context, ws *websocket.Conn, id string, tracker progress.Tracker) error {
	closeCh := watchClose(ctx, ws)
	ticker := time.NewTicker(wsPushInterval)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			goapp.Log.Info().Msg("context canceled")
			return nil
		case <-closeCh:
			goapp.Log.Info().Str("id", id).Msg("client gone")
			return nil
		case <-ticker.C:
			p, ok := tracker.GetProgress(id)
			if !ok {
				if last >= 0 {
					_ = ws.WriteJSON(api.ProgressMsg{ID: id, Percent: last, Done: true})
					return nil
				}
				continue
			}
			if p != last {
				if err := ws.WriteJSON(api.ProgressMsg{ID: id, Percent: p, Done: p >= 100}); err != nil {
					goapp.Log.Error().Err(err).Msg("write error")
					return nil
				}
				last = p
			}
			if p >= 100 {
				return nil
			}
		}
	}
}

// watchClose drains the socket so close frames are noticed.
func watchClose(ctx context.Context, ws *websocket.Conn) <-chan struct{} {
	resCh := make(chan struct{})
	go func() {
		defer close(resCh)
		defer goapp.Log.Debug().Msg("read routine ended")
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsCloseError(err, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) ||
					errors.Is(err, net.ErrClosed) {
					goapp.Log.Info().Msg("connection closed")
					return
				}
				goapp.Log.Error().Err(err).Send()
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return resCh
}
