package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"herbar/client/internal/app"
	"herbar/client/internal/metrics"
	"herbar/client/internal/urlstate"
)

func RunCmd(s *session) *cobra.Command {
	var startURL string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the catalog and drive it interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := openEnv(ctx, s.cfg, s.logger)
			if err != nil {
				return err
			}
			defer e.Close()

			c := newController(s, e, startURL)
			defer c.Close()

			if s.cfg.MetricsAddr != "" {
				srv, err := serveStatus(s, c)
				if err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			if err := c.Start(ctx); err != nil {
				return err
			}
			r := &repl{c: c, out: cmd.OutOrStdout()}
			r.show("list")
			return r.loop(ctx, cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&startURL, "url", "", "start from this link instead of the public URL")
	return cmd
}

func newController(s *session, e *env, startURL string) *app.Controller {
	if startURL == "" {
		startURL = s.cfg.PublicURL
	}
	return app.New(s.cfg, app.Deps{
		Fetcher:   e.fetcher,
		FAQ:       e.faq,
		KV:        e.kv,
		Clipboard: e.clipboard,
		Location:  urlstate.NewMemoryLocation(startURL),
		Logger:    s.logger,
	})
}

func serveStatus(s *session, c *app.Controller) (*http.Server, error) {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, err
	}
	srv := &http.Server{
		Addr:              s.cfg.MetricsAddr,
		Handler:           app.NewStatusServer(c, prometheus.DefaultGatherer, s.logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		s.logger.Info("status server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server failed", "err", err)
		}
	}()
	return srv, nil
}
