package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/geulmoi/geulssaem/internal/model"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

// wsRequest is one frame from the client.
type wsRequest struct {
	Type        string `json:"type"` // "evaluate", "chat", or "reset"
	Text        string `json:"text,omitempty"`
	Grade       string `json:"grade,omitempty"`
	Subject     string `json:"subject,omitempty"`
	WritingType string `json:"writing_type,omitempty"`
}

// wsResponse is one frame to the client.
type wsResponse struct {
	Type     string                  `json:"type"`
	Result   *model.EvaluationResult `json:"result,omitempty"`
	Reply    string                  `json:"reply,omitempty"`
	Fallback bool                    `json:"fallback,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// handleWS upgrades the connection and serves tutor frames until the
// client disconnects. Frames are handled one at a time; the model call
// for a frame finishes before the next frame is read.
func (s *Server) handleWS(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.Sessions.Get(id); !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.Log.With().Str("session_id", id).Logger()
	log.Info().Msg("websocket connected")

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("websocket read failed")
			} else {
				log.Info().Msg("websocket closed")
			}
			return
		}
		s.serveFrame(c.Request.Context(), conn, id, req, log)
	}
}

func (s *Server) serveFrame(ctx context.Context, conn *websocket.Conn, id string, req wsRequest, log zerolog.Logger) {
	var resp wsResponse
	switch req.Type {
	case "evaluate":
		result, ok := s.evaluateInSession(ctx, id, req.Text, tutor.Settings{
			Grade:       req.Grade,
			Subject:     req.Subject,
			WritingType: req.WritingType,
		})
		if !ok {
			resp = wsResponse{Type: "error", Error: "session not found"}
			break
		}
		resp = wsResponse{Type: "evaluation", Result: &result}

	case "chat":
		result, ok := s.chatInSession(ctx, id, req.Text)
		if !ok {
			resp = wsResponse{Type: "error", Error: "session not found"}
			break
		}
		resp = wsResponse{Type: "reply", Reply: result.Reply, Fallback: result.Fallback}

	case "reset":
		if _, ok := s.resetSession(id); !ok {
			resp = wsResponse{Type: "error", Error: "session not found"}
			break
		}
		resp = wsResponse{Type: "reset"}

	default:
		resp = wsResponse{Type: "error", Error: "unknown frame type: " + req.Type}
	}

	if err := conn.WriteJSON(resp); err != nil {
		log.Warn().Err(err).Msg("websocket write failed")
	}
}

// checkOrigin admits every origin when none are configured, matching the
// CORS behavior of the HTTP routes.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
