//	@title			Filegate API
//	@version		1.0
//	@description	HTTP façade over object storage: list buckets, list, inspect, upload and delete files.
//
//	@host		localhost:3500
//	@BasePath	/
//	@schemes	https

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/filegate/service/internal/config"
	"github.com/filegate/service/internal/files"
	"github.com/filegate/service/internal/logger"
	"github.com/filegate/service/internal/metrics"
	appMiddleware "github.com/filegate/service/internal/middleware"
	"github.com/filegate/service/internal/server"
	"github.com/filegate/service/internal/storage"
	"github.com/filegate/service/internal/upload"

	_ "github.com/filegate/service/docs/swagger"
)

func main() {
	cfg, dotenv := config.Load()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "filegate"})
	if !dotenv {
		log.Info().Msg("no .env file found, reading from environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration rejected")
	}

	m := metrics.New()

	store, err := newStorage(context.Background(), cfg, logger.Component(log, "storage"))
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.StorageProvider).Msg("object storage init failed")
	}
	store = storage.Instrument(store, m)

	// Wire dependencies: storage → uploader → service → handler
	uploader := upload.NewUploader(store, cfg.UploadFolder, logger.Component(log, "upload"))
	filesSvc := files.NewService(store, uploader, logger.Component(log, "files"))
	filesHandler := files.NewHandler(filesSvc, logger.Component(log, "files"), files.Options{
		MaxUploadBytes:  cfg.MaxUploadBytes,
		ViewFile:        cfg.ViewFile,
		CredentialsFile: cfg.GCSCredentialsFile,
	})

	router := server.NewRouter(server.Deps{
		Files:   filesHandler,
		Errors:  appMiddleware.NewErrors(logger.Component(log, "errors"), cfg.ErrorStatusMode == config.ErrorModeTyped),
		Metrics: m,
		Log:     logger.Component(log, "http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.AppEnv).
			Bool("tls", cfg.TLSEnabled).
			Str("bucket", store.BucketName()).
			Msg("app running")
		if err := listen(srv, cfg); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("close storage")
	}

	log.Info().Msg("server stopped")
}

// listen serves HTTPS with the configured key pair, or plain HTTP when TLS is
// disabled. Missing certificate files fail immediately.
func listen(srv *http.Server, cfg *config.Config) error {
	if !cfg.TLSEnabled {
		return srv.ListenAndServe()
	}
	for _, f := range []string{cfg.TLSCertFile, cfg.TLSKeyFile} {
		if _, err := os.Stat(f); err != nil {
			return err
		}
	}
	return srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
}

func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case config.ProviderMinio:
		s, err := storage.NewMinio(storage.MinioConfig{
			Endpoint:   cfg.MinioEndpoint,
			AccessKey:  cfg.MinioAccessKey,
			SecretKey:  cfg.MinioSecretKey,
			UseSSL:     cfg.MinioUseSSL,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.MinioPublicBase,
		})
		if err != nil {
			return nil, err
		}
		created, err := s.EnsureBucket(ctx)
		if err != nil {
			return nil, err
		}
		if created {
			log.Info().Str("bucket", cfg.StorageBucket).Msg("created bucket")
		}
		return s, nil
	case config.ProviderMemory:
		log.Warn().Msg("using in-memory storage, contents are lost on restart")
		return storage.NewMemory(cfg.StorageBucket, cfg.StoragePublicHost), nil
	default:
		return storage.NewGCS(ctx, storage.GCSConfig{
			ProjectID:       cfg.GCSProjectID,
			CredentialsFile: cfg.GCSCredentialsFile,
			Endpoint:        cfg.GCSEndpoint,
			Bucket:          cfg.StorageBucket,
			PublicHost:      cfg.StoragePublicHost,
		})
	}
}
