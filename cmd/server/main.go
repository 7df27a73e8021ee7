package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"syndicateiq/internal/config"
	"syndicateiq/internal/esg"
	"syndicateiq/internal/events"
	"syndicateiq/internal/handler"
	"syndicateiq/internal/middleware"
	"syndicateiq/internal/ocr"
	"syndicateiq/internal/report"
	"syndicateiq/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "syndicateiq: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	// --- Toolchain probe (warn only; /health does not depend on it) ---
	if missing := ocr.LookupBinaries(cfg.OCR.Pdftoppm, cfg.OCR.Tesseract); len(missing) > 0 {
		logger.Warn("OCR fallback unavailable: binaries not found on PATH", "missing", missing)
	}

	// --- Events ---
	bus := events.NewBus()
	feed := events.NewFeed(cfg.Notifications.Capacity)
	feed.Attach(bus)
	bus.Subscribe(func(e events.Event) {
		logger.Debug("notification", "topic", e.Topic, "level", e.Level, "message", e.Message)
	})

	// --- Services ---
	runner := ocr.NewExecRunner(logger)
	renderer, ocrRunner, err := ocr.NewFromConfig(cfg.OCR, runner, logger)
	if err != nil {
		return fmt.Errorf("configuring OCR: %w", err)
	}
	extractionService := service.NewExtractionService(service.NewPDFExtractor(), renderer, ocrRunner, bus, logger).
		WithMinTextLength(cfg.Extraction.MinTextLength)

	scorer := esg.NewScorer()
	if path := cfg.ESG.KeywordsFile; path != "" {
		tables, err := esg.LoadTablesFile(path)
		if err != nil {
			return fmt.Errorf("loading ESG keywords: %w", err)
		}
		scorer = esg.NewScorer(tables...)
		logger.Info("custom ESG keyword tables loaded", "path", path, "categories", len(tables))
	}

	reportRenderer, err := report.NewRenderer()
	if err != nil {
		return err
	}

	// --- Handlers ---
	extractHandler := handler.NewExtractHandler(extractionService, cfg.Server.MaxUploadBytes, logger)
	esgHandler := handler.NewESGHandler(scorer)
	reportHandler := handler.NewReportHandler(reportRenderer, bus, logger)
	notificationHandler := handler.NewNotificationHandler(feed)

	// --- Router ---
	mux := http.NewServeMux()

	// Health check (no auth)
	handler.RegisterHealth(mux)

	authMw := middleware.RequireAuth(cfg.JWT.Secret)
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET not set; API authentication disabled")
	}
	extractHandler.RegisterRoutes(mux, authMw)
	esgHandler.RegisterRoutes(mux, authMw)
	reportHandler.RegisterRoutes(mux, authMw)
	notificationHandler.RegisterRoutes(mux, authMw)

	// --- Server ---
	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: middleware.Chain(mux,
			middleware.CORS(cfg.Server.CORSOrigins),
			middleware.Logging(logger),
			middleware.Recover(logger),
		),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("syndicateiq server starting", "addr", srv.Addr, "ocr_engine", ocrRunner.Engine.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
