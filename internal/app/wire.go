//go:build wireinject
// +build wireinject

package app

import (
	"log/slog"

	"github.com/google/wire"

	"video-transcript/internal/api/server"
	"video-transcript/internal/api/v1/services"
	"video-transcript/internal/app/assembler"
	"video-transcript/internal/config"
)

// InitializeApplication builds the full application from configuration.
func InitializeApplication(settings *config.Settings, apiKeys *config.APIKeys, logger *slog.Logger) (*Application, error) {
	wire.Build(
		provideResolver,
		provideCaptionSource,
		provideDownloader,
		provideTranscriber,
		provideMerger,
		provideLimiter,
		provideAssemblerConfig,
		assembler.New,
		OpenDAO,
		provideRedisClient,
		services.NewTranscriptService,
		provideServerConfig,
		server.NewServer,
		wire.Struct(new(Application), "Server", "Assembler", "Service", "DAO"),
	)
	return nil, nil
}
