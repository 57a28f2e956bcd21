package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagelake/pagelake/internal/api/handlers"
	"github.com/pagelake/pagelake/internal/chunk"
	"github.com/pagelake/pagelake/internal/config"
	"github.com/pagelake/pagelake/internal/jobs"
	"github.com/pagelake/pagelake/internal/logging"
	"github.com/pagelake/pagelake/internal/server"
	"github.com/pagelake/pagelake/internal/service"
	"github.com/pagelake/pagelake/internal/storage"
	"github.com/pagelake/pagelake/internal/sweep"
	"github.com/pagelake/pagelake/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ingestion server",
		Long:  "Start the pagelake API server and the periodic sweep worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-sweep", false, "Disable the periodic sweep worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.Init(cfg.Debug, cfg.Debug)

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			logging.L().Warn().Err(err).Msg("telemetry init failed (continuing without tracing)")
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	storeClient := storage.NewClient(storage.ClientConfig{
		Endpoint: cfg.UploadEndpoint,
		Bucket:   cfg.UploadBucket,
		BasePath: cfg.UploadBasePath,
		Token:    cfg.UploadToken,
		Timeout:  cfg.UploadTimeout,
	})

	resolver := chunk.NewResolver(cfg.DataDir, cfg.UploadBasePath, storeClient)
	accumulator := chunk.NewAccumulator(cfg.DataDir)
	flushPolicy := chunk.NewFlushPolicy(cfg.DataDir, cfg.FlushThreshold, storeClient, resolver)

	sweeper := sweep.NewSweeper(cfg.DataDir, storeClient, sweep.Config{
		Concurrency:     cfg.SweepConcurrency,
		DeleteOnSuccess: cfg.SweepDeleteOnSuccess,
	})

	var sweepWorker *jobs.Worker
	noSweep, _ := cmd.Flags().GetBool("no-sweep")
	if !noSweep {
		sweepWorker = jobs.NewWorker(jobs.NewSweepProcessor(sweeper), cfg.SweepInterval)
		go sweepWorker.Start(ctx)
		logging.L().Info().Dur("interval", cfg.SweepInterval).Msg("sweep worker started")
	}

	ingestSvc := service.NewIngestService(resolver, accumulator, flushPolicy)

	var presignClient service.PresignClient
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		presignClient = s3Client
	} else {
		presignClient = &NoOpPresignClient{}
	}

	routerCfg := server.RouterConfig{
		PageHandler:    handlers.NewPageHandler(ingestSvc),
		PresignHandler: handlers.NewPresignHandler(service.NewPresignService(presignClient)),
		SweepHandler:   handlers.NewSweepHandler(sweeper),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logging.L().Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.L().Info().Msg("shutting down...")

	if sweepWorker != nil {
		sweepWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logging.L().Info().Msg("server exited")
	return nil
}

// NoOpPresignClient rejects presign requests when no S3 credentials are set.
type NoOpPresignClient struct{}

func (c *NoOpPresignClient) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return "", fmt.Errorf("presigning not configured: S3_ACCESS_KEY_ID required")
}

func (c *NoOpPresignClient) PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return "", fmt.Errorf("presigning not configured: S3_ACCESS_KEY_ID required")
}
