package serve

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"video-transcript/internal/app"
	"video-transcript/internal/config"
)

var configPath string

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to yaml config file")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcript HTTP API server",
	Long: `Run the transcript HTTP API server.

Serves transcript acquisition on POST /api/v1/transcript, formatting on
POST /api/v1/transcript/format, and stored transcripts under
/api/v1/transcripts. Health and prometheus metrics are on /health and
/metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(configPath)
		if err != nil {
			return err
		}
		apiKeys, err := config.GetAPIKeys()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		application, err := app.InitializeApplication(settings, apiKeys, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		if err := application.Server.Start(); err != nil {
			return err
		}

		// Block until asked to stop, then drain in-flight requests.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := application.Server.Shutdown(ctx); err != nil {
			log.Printf("forced shutdown: %v", err)
		}
		return nil
	},
}
