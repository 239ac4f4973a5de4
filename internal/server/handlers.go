package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geulmoi/geulssaem/internal/events"
	"github.com/geulmoi/geulssaem/internal/model"
	"github.com/geulmoi/geulssaem/internal/session"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

type createSessionRequest struct {
	Grade       string `json:"grade"`
	Subject     string `json:"subject"`
	WritingType string `json:"writing_type"`
	Mode        string `json:"mode"`
}

type evaluateRequest struct {
	Text        string `json:"text" binding:"required"`
	Grade       string `json:"grade"`
	Subject     string `json:"subject"`
	WritingType string `json:"writing_type"`
}

type chatRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok", "sessions": s.Sessions.Len()})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "invalid request payload: " + err.Error()})
			return
		}
	}

	sess := s.Sessions.Create(tutor.Settings{
		Grade:       req.Grade,
		Subject:     req.Subject,
		WritingType: req.WritingType,
	}, model.Mode(req.Mode))
	c.JSON(200, sess)
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}
	c.JSON(200, sess)
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	result, ok := s.evaluateInSession(c.Request.Context(), c.Param("id"), req.Text, tutor.Settings{
		Grade:       req.Grade,
		Subject:     req.Subject,
		WritingType: req.WritingType,
	})
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}
	c.JSON(200, result)
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	result, ok := s.chatInSession(c.Request.Context(), c.Param("id"), req.Text)
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}
	c.JSON(200, gin.H{
		"reply":    result.Reply,
		"fallback": result.Fallback,
		"usage":    result.Usage,
	})
}

func (s *Server) handleReset(c *gin.Context) {
	sess, ok := s.resetSession(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}
	c.JSON(200, sess)
}

func (s *Server) handleEvents(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.Sessions.Get(id); !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}
	list := s.Events.Session(id, time.Now().UTC())
	if list == nil {
		list = []events.Event{}
	}
	c.JSON(200, gin.H{"session_id": id, "events": list})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(200, gin.H{
		"grades":        model.Grades(),
		"subjects":      model.Subjects(),
		"writing_types": model.WritingTypes(),
		"defaults": gin.H{
			"grade":        model.DefaultGrade,
			"subject":      model.DefaultSubject,
			"writing_type": model.DefaultWritingType,
		},
	})
}

// evaluateInSession runs one evaluation inside a session: the submission is
// appended as a student turn, then the scored feedback as a tutor turn.
// Non-empty label overrides stick to the session. Returns false when the
// session does not exist.
func (s *Server) evaluateInSession(ctx context.Context, id, text string, overrides tutor.Settings) (model.EvaluationResult, bool) {
	sess, ok := s.Sessions.Get(id)
	if !ok {
		return model.EvaluationResult{}, false
	}

	settings := mergeSettings(sess.Settings, overrides)
	if settings != sess.Settings {
		s.Sessions.SetSettings(id, settings)
	}
	if _, ok := s.Sessions.Append(id, model.StudentTurn(text)); !ok {
		return model.EvaluationResult{}, false
	}

	result := s.Tutor.Evaluate(ctx, tutor.EvaluateRequest{
		Text:      text,
		Settings:  settings,
		SessionID: id,
	})
	s.Sessions.Append(id, model.ScoredTutorTurn(result.Feedback, result.Score))
	return result, true
}

// chatInSession runs one conversation turn inside a session. The student
// turn is appended before the model call so the prompt transcript sees it.
func (s *Server) chatInSession(ctx context.Context, id, text string) (tutor.ConverseResult, bool) {
	sess, ok := s.Sessions.Append(id, model.StudentTurn(text))
	if !ok {
		return tutor.ConverseResult{}, false
	}

	result := s.Tutor.Converse(ctx, tutor.ConverseRequest{
		Utterance: text,
		Settings:  sess.Settings,
		History:   sess.Turns,
		SessionID: id,
	})
	s.Sessions.Append(id, model.TutorTurn(result.Reply))
	return result, true
}

// resetSession clears the history and returns the session to evaluate mode.
func (s *Server) resetSession(id string) (*session.Session, bool) {
	if _, ok := s.Sessions.Reset(id); !ok {
		return nil, false
	}
	sess, ok := s.Sessions.SetMode(id, model.ModeEvaluate)
	if !ok {
		return nil, false
	}
	s.Events.Drop(id)
	s.Events.Record(events.Event{SessionID: id, Kind: events.KindReset})
	return sess, true
}

func mergeSettings(base, overrides tutor.Settings) tutor.Settings {
	if overrides.Grade != "" {
		base.Grade = overrides.Grade
	}
	if overrides.Subject != "" {
		base.Subject = overrides.Subject
	}
	if overrides.WritingType != "" {
		base.WritingType = overrides.WritingType
	}
	return base
}
