// Package app assembles the application graph: pipeline, storage, HTTP
// server. Construction happens through wire; the providers here hold the
// configuration-driven choices.
package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"video-transcript/internal/api/middleware"
	"video-transcript/internal/api/server"
	"video-transcript/internal/api/v1/services"
	"video-transcript/internal/app/assembler"
	"video-transcript/internal/app/audio"
	"video-transcript/internal/app/captions"
	"video-transcript/internal/app/diarize"
	"video-transcript/internal/app/repository"
	"video-transcript/internal/app/repository/pg"
	"video-transcript/internal/app/repository/sqlite"
	"video-transcript/internal/app/stt"
	sttopenai "video-transcript/internal/app/stt/openai"
	"video-transcript/internal/app/stt/whisper_cpp"
	"video-transcript/internal/app/util/files"
	"video-transcript/internal/app/video"
	"video-transcript/internal/config"
)

// Application is the fully wired process: the HTTP server plus the
// resources that need explicit teardown.
type Application struct {
	Server    *server.Server
	Assembler *assembler.Assembler
	Service   services.TranscriptService
	DAO       repository.TranscriptDAO
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.DAO != nil {
		return a.DAO.Close()
	}
	return nil
}

func provideResolver() video.Resolver {
	return video.NewHTTPResolver(15 * time.Second)
}

func provideCaptionSource(logger *slog.Logger) captions.Source {
	return captions.NewTimedTextSource(logger)
}

func provideDownloader() audio.Downloader {
	return audio.NewYtDlpDownloader("yt-dlp")
}

func provideTranscriber(settings *config.Settings, apiKeys *config.APIKeys) (stt.Transcriber, error) {
	registry := stt.NewRegistry()
	registry.Register("whisper_cpp", whisper_cpp.NewLocalTranscriber(
		settings.Transcriber.BinaryPath,
		settings.Transcriber.ModelPath,
		settings.Transcriber.Language,
	))
	if apiKeys.OpenAI != "" {
		registry.Register("openai", sttopenai.NewRemoteTranscriberFromKey(apiKeys.OpenAI))
	}

	if settings.Transcriber.Engine == "openai" {
		if err := config.RequireOpenAIKey(apiKeys); err != nil {
			return nil, err
		}
	}
	return registry.Get(settings.Transcriber.Engine)
}

// provideMerger returns nil when diarization is disabled or unkeyed;
// requests asking for speakers then proceed unlabeled.
func provideMerger(settings *config.Settings, apiKeys *config.APIKeys, downloader audio.Downloader, logger *slog.Logger) *diarize.Merger {
	if !settings.Diarization.Enabled {
		return nil
	}
	if err := config.RequireGeminiKey(apiKeys); err != nil {
		logger.Warn("diarization disabled", "reason", err.Error())
		return nil
	}
	identifier, err := diarize.NewGeminiIdentifier(context.Background(), apiKeys.Gemini, settings.Diarization.Model)
	if err != nil {
		logger.Warn("diarization disabled", "error", err)
		return nil
	}
	return diarize.NewMerger(identifier, downloader, logger)
}

func provideLimiter(settings *config.Settings) *assembler.Limiter {
	return assembler.NewLimiter(settings.Pipeline.MaxConcurrent, settings.Pipeline.MaxQueue)
}

func provideAssemblerConfig(settings *config.Settings) assembler.Config {
	return assembler.Config{MaxDuration: settings.Pipeline.MaxDurationSeconds}
}

// OpenDAO opens the transcript store selected by settings. It returns a
// nil DAO when storage is disabled.
func OpenDAO(settings *config.Settings) (repository.TranscriptDAO, error) {
	switch settings.Storage.Backend {
	case "postgres":
		return pg.NewPostgresDB(settings.Storage.PostgresDSN)
	case "none", "":
		return nil, nil
	default:
		dbPath := settings.Storage.SQLitePath
		if !filepath.IsAbs(dbPath) {
			if root, err := files.GetProjectRoot(); err == nil {
				dbPath = filepath.Join(root, dbPath)
			}
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
			return nil, err
		}
		return sqlite.NewSQLiteDB(dbPath)
	}
}

func provideRedisClient(settings *config.Settings) *redis.Client {
	if settings.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     settings.Redis.Addr,
		Password: settings.Redis.Password,
		DB:       settings.Redis.DB,
	})
}

func provideServerConfig(settings *config.Settings) server.Config {
	return server.Config{
		Host:         settings.Server.Host,
		Port:         settings.Server.Port,
		ReadTimeout:  settings.Server.ReadTimeout.Std(),
		WriteTimeout: settings.Server.WriteTimeout.Std(),
		IdleTimeout:  settings.Server.IdleTimeout.Std(),
		Environment:  settings.Server.Environment,
		RateLimit:    middleware.DefaultRateLimitConfig(),
	}
}
