// Package cli is the herbar command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"herbar/client/internal/config"
)

// session carries what every subcommand needs once the root has run.
type session struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

func Execute() error {
	return NewRoot().Execute()
}

func NewRoot() *cobra.Command {
	s := &session{}
	root := &cobra.Command{
		Use:           "herbar",
		Short:         "Plant catalog client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&s.configPath, "config", "", "TOML config file (overrides HERBAR_CONFIG)")
	root.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&s.logFormat, "log-format", "", "text or json")

	root.AddCommand(
		RunCmd(s),
		ExportCmd(s),
		URLCmd(),
		SeedCmd(s),
	)
	return root
}

func (s *session) load(logOut io.Writer) error {
	if s.configPath != "" {
		if err := os.Setenv("HERBAR_CONFIG", s.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if s.logLevel != "" {
		cfg.LogLevel = s.logLevel
	}
	if s.logFormat != "" {
		cfg.LogFormat = s.logFormat
	}
	s.cfg = cfg
	s.logger = newLogger(logOut, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(s.logger)
	return nil
}

func newLogger(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
