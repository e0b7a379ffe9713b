package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rthomason/storelens/internal/api"
	"github.com/rthomason/storelens/internal/database"
	"github.com/rthomason/storelens/internal/errors"
	"github.com/rthomason/storelens/internal/logging"
	"github.com/rthomason/storelens/internal/schema"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query API",
	Long: `Start the HTTP server exposing POST /api/query and GET /healthz.

Examples:
  storelens serve
  storelens serve --addr :9000
  storelens serve --local-fallback`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}

	logger := logging.GetLogger()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	introspector := schema.NewIntrospector(db.Pool())

	p, err := buildPipeline(cfg, introspector, db)
	if err != nil {
		return err
	}

	server := api.NewServer(p, cfg.Server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return errors.Wrap(err, errors.ErrTypeInternal, "HTTP server failed")
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
