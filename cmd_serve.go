package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ai_quick_actions/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reply sessions over HTTP",
	Long: `Serve reply sessions over HTTP.

Each POST /api/sessions keeps a session alive on the server. Clients should
DELETE /api/sessions/{id} when done; sessions left idle longer than
session_ttl in the config (default 30m) are closed automatically.
Set session_ttl to 0 to keep sessions until they are deleted.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "http listen address (overrides config.server_addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	agent, variants, err := newReplyAgent("")
	if err != nil {
		return err
	}
	srv, err := server.New(agent, variants, logger, server.WithSessionTTL(cfg.SessionTTL.Std()))
	if err != nil {
		return err
	}
	defer srv.Close()

	listen := cfg.ServerAddr
	if serveAddr != "" {
		listen = serveAddr
	}
	if listen == "" {
		listen = ":8080"
	}
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.RunSweeper(ctx, srv.SweepInterval())

	errc := make(chan error, 1)
	go func() {
		logger.Infow("starting web server", "addr", listen)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Infow("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
