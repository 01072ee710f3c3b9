package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the escalation monitor and reconciler",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := components()
		if err != nil {
			return err
		}
		cfg := app.Loader.Config()
		logger := app.Logger

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		handler, err := app.HTTPHandler()
		if err != nil {
			return err
		}

		stopWatch, err := app.Loader.Watch()
		if err != nil {
			logger.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			app.Monitor.Run(ctx, cfg.Engine.MonitorInterval)
		}()
		go func() {
			defer wg.Done()
			app.Reconciler.Run(ctx, cfg.Engine.ReconcileInterval)
		}()

		srv := &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			logger.Info("server starting",
				"addr", addr,
				"monitor_interval", cfg.Engine.MonitorInterval,
				"reconcile_interval", cfg.Engine.ReconcileInterval,
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if err != nil {
				stop()
				wg.Wait()
				return fmt.Errorf("server error: %w", err)
			}
		}

		logger.Info("shutting down")
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutCancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Warn("server shutdown incomplete", "err", err)
		}
		stop()
		wg.Wait()
		fmt.Fprintln(os.Stderr, "goodbye")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (default from config)")
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return serveCmd
}
