package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the job API and the worker pool",
		Long: `Serves the HTTP API (jobs, dedupe, brand, normalize, spirits) and runs a
fixed pool of workers draining the in-process job queue. SIGINT and SIGTERM
drain the server and stop the workers.`,
		Annotations: map[string]string{needsApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if port <= 0 {
				port = appInstance.Config.Server.Port
			}
			logger := appInstance.Logger

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           appInstance.Server.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			workersDone := make(chan struct{})
			go func() {
				defer close(workersDone)
				logger.Info("dispatcher started", zap.Int("workers", appInstance.Dispatcher.Workers()))
				appInstance.Dispatcher.Run(ctx)
			}()

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("http server started", zap.Int("port", port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info("shutdown initiated")

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown error", zap.Error(err))
			}
			appInstance.Queue.Close()
			select {
			case <-workersDone:
			case <-shutdownCtx.Done():
				logger.Warn("workers did not stop before the shutdown deadline")
			}
			logger.Info("shutdown complete")

			select {
			case err := <-serveErr:
				return fmt.Errorf("http server: %w", err)
			default:
				return nil
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to server.port)")
	return cmd
}
