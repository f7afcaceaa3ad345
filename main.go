package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"citation-hand/config"
	"citation-hand/providers/europepmc"
	"citation-hand/services"
	"citation-hand/storage"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	logging, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	// Setup Storage
	provider, err := storage.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Failed to open citation storage", zap.Error(err))
	}
	defer provider.Close()

	// Setup Services
	engine := services.NewEngine(provider, logging, time.Now)
	lookup := europepmc.NewClient(cfg.EuropePMCBaseURL, logging)

	router := newRouter(cfg, engine, lookup, logging)

	// Setup Cron
	if cfg.ExportCronSchedule != "" && cfg.ExportEnabled() {
		s3Client, err := storage.NewS3Client(context.Background(), cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		exporter := services.NewExporter(engine, storage.NewS3Store(s3Client, cfg), cfg.ExportKeep, logging)

		cronScheduler := cron.New()
		_, err = cronScheduler.AddFunc(cfg.ExportCronSchedule, func() {
			logging.Info("Running scheduled bibliography export...")
			report, err := exporter.Run(context.Background(), nil, nil)
			if err != nil {
				logging.Error("Cron job failed", zap.Error(err))
				return
			}
			logging.Info("Cron job completed", zap.Int("uploaded", len(report.Uploaded)), zap.Int("removed", report.Removed))
		})
		if err != nil {
			logging.Fatal("Invalid export cron schedule", zap.String("schedule", cfg.ExportCronSchedule), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	} else {
		logging.Info("Bibliography export disabled.")
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort), zap.String("storage", cfg.StorageDriver))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}
