package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/geulmoi/geulssaem/internal/events"
	telem "github.com/geulmoi/geulssaem/internal/otel"
	"github.com/geulmoi/geulssaem/internal/session"
	"github.com/geulmoi/geulssaem/internal/tui"
	"github.com/geulmoi/geulssaem/internal/tutor"
)

var flagChatTheme string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal tutor",
	Long: `Launch the interactive terminal UI: submit writing for evaluation or
talk freely with the tutor about writing.

Keys: Enter sends, Tab opens the settings row, Ctrl+E/Ctrl+D switch
between evaluation and conversation mode, Ctrl+R resets the session,
Esc quits.

Configuration is loaded from .geulssaem.yaml or environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().StringVar(&flagChatTheme, "theme", "",
		"Color theme: dark, light (default: from config)")
	rootCmd.AddCommand(chatCmd)
}

func runChat() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel() // cancels in-flight model calls when the TUI exits

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
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

	eventStore := events.NewStore(3 * time.Minute)
	theme := flagChatTheme
	if theme == "" {
		theme = cfg.Theme
	}

	app := &tui.TUI{
		Tutor: &tutor.Tutor{
			Gen:            gen,
			AttemptTimeout: cfg.AttemptTimeoutDuration,
			Events:         eventStore,
			Metrics:        metrics,
		},
		Sessions: session.NewRegistry(cfg.SessionTTLDuration),
		Events:   eventStore,
		Theme:    tui.ThemeByName(theme),
		Settings: settingsFromConfig(cfg),
	}
	return app.Run(ctx)
}
