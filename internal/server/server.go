// Package server exposes the tutor over HTTP and WebSocket.
//
// Every route shares the total-evaluation semantics of the tutor package:
// a well-formed request for a live session always gets a result, with
// degradations reported inside the payload rather than as HTTP errors.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/geulmoi/geulssaem/internal/events"
	"github.com/geulmoi/geulssaem/internal/session"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

// Server wires the tutor, the session registry, and the activity log
// into an HTTP API.
type Server struct {
	Tutor    *tutor.Tutor
	Sessions *session.Registry
	Events   *events.Store

	// AllowedOrigins restricts CORS and WebSocket origins.
	// Empty allows every origin.
	AllowedOrigins []string

	Log zerolog.Logger
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.Log))
	_ = router.SetTrustedProxies(nil)

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(s.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", s.handleHealthz)

	api := router.Group("/api")
	{
		api.POST("/sessions", s.handleCreateSession)
		api.GET("/sessions/:id", s.handleGetSession)
		api.POST("/sessions/:id/evaluate", s.handleEvaluate)
		api.POST("/sessions/:id/chat", s.handleChat)
		api.POST("/sessions/:id/reset", s.handleReset)
		api.GET("/sessions/:id/events", s.handleEvents)
		api.GET("/options", s.handleOptions)
	}

	router.GET("/ws/sessions/:id", s.handleWS)

	return router
}

// Run serves the API on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.Log.Info().Str("addr", addr).Msg("server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.Log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}
