package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The browser front end may be served from a dev origin.
		return true
	},
}

// progressMessage is one websocket progress frame.
type progressMessage struct {
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Error     string `json:"error,omitempty"`
}

// handleProgress streams generation progress until the session leaves
// the generating state or the client goes away.
func (s *Server) handleProgress(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		snap := sess.snapshot()
		msg := progressMessage{
			Status:    snap.Status,
			Completed: snap.Completed,
			Total:     snap.Total,
			Error:     snap.Error,
		}
		if err := ws.WriteJSON(msg); err != nil {
			return nil
		}
		if snap.Status == StatusDone || snap.Status == StatusError {
			break
		}
	}

	ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}
