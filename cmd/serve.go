package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/geulmoi/geulssaem/internal/events"
	telem "github.com/geulmoi/geulssaem/internal/otel"
	"github.com/geulmoi/geulssaem/internal/server"
	"github.com/geulmoi/geulssaem/internal/session"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

var flagListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tutor over HTTP and WebSocket",
	Long: `Run the HTTP API: session management, evaluation, chat, and a
WebSocket endpoint for interactive clients.

Sessions live in memory and idle ones expire after the configured TTL.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListenAddr, "listen", "", "listen address, e.g. :8080 (default: from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
	}

	telem.Version = Version
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
	}
	if tel != nil {
		defer tel.Shutdown(ctx)
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGenerator(gen)

	var metrics *telem.Metrics
	if tel != nil {
		metrics = tel.Metrics
	}

	log := zerolog.New(zerolog.NewConsoleWriter()).
		With().
		Timestamp().
		Str("component", "server").
		Logger()

	eventStore := events.NewStore(3 * time.Minute)
	srv := &server.Server{
		Tutor: &tutor.Tutor{
			Gen:            gen,
			AttemptTimeout: cfg.AttemptTimeoutDuration,
			Events:         eventStore,
			Metrics:        metrics,
		},
		Sessions:       session.NewRegistry(cfg.SessionTTLDuration),
		Events:         eventStore,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	}

	addr := flagListenAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	return srv.Run(ctx, addr)
}
