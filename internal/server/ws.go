package server

import (
	"context"
	"net/http"
	"time"

	"StockSentinel/internal/scanner"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsMessage is one frame on the recommendations stream.
type wsMessage struct {
	Type     string                        `json:"type"`
	Progress *scanner.Progress             `json:"progress,omitempty"`
	Report   *scanner.RecommendationReport `json:"report,omitempty"`
	Error    string                        `json:"error,omitempty"`
}

// handleRecommendationsWS runs a recommendation scan and streams one
// "progress" frame per symbol followed by a final "report" frame. The scan is
// cancelled when the client disconnects.
func (s *Server) handleRecommendationsWS(c *gin.Context) {
	opts, err := s.recommendOptions(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	// A hijacked connection does not cancel the request context, so a read
	// loop watches for the client going away.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(m wsMessage) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(m)
	}

	report, err := s.Scanner.Recommend(ctx, s.Options.Symbols, opts, func(p scanner.Progress) {
		if err := send(wsMessage{Type: "progress", Progress: &p}); err != nil {
			s.logger.Debug().Err(err).Msg("websocket progress write")
		}
	})
	if err != nil {
		send(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	if err := send(wsMessage{Type: "report", Report: report}); err != nil {
		s.logger.Debug().Err(err).Msg("websocket report write")
		return
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), time.Now().Add(writeWait))
}
