package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examination_app_go/config"
	"examination_app_go/handlers"
	"examination_app_go/middleware"
	"examination_app_go/services"
	"examination_app_go/services/i18n"
	"examination_app_go/services/jobs"
	"examination_app_go/templates/partials"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := i18n.Load(); err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	// Open persistence and seed the example records
	stores, err := services.OpenStores(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()

	// Export pipeline: HTML document -> headless Chrome -> artifact store
	exports := services.NewExportService(
		services.ChromeRenderer{ExecPath: cfg.ChromePath},
		partials.RenderPaperDocument,
		services.NewArtifactStore(cfg),
		cfg.ExportTimeout,
	)

	scheduler, err := jobs.StartScheduler(cfg, exports)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	app := &handlers.App{
		Config:    cfg,
		Templates: stores.Templates,
		Papers:    stores.Papers,
		Catalog:   stores.Catalog,
		Exports:   exports,
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Use(middleware.Locale(cfg))

	// Static files (local export artifacts live under static/)
	e.Static("/static", "static")

	stopCleanup := make(chan struct{})
	exportLimiter := middleware.NewExportRateLimiter(cfg.ExportRateLimit)
	exportLimiter.StartCleanup(time.Minute, stopCleanup)

	handlers.RegisterRoutes(e, app, exportLimiter.Middleware())

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] Shutting down...")
	close(stopCleanup)
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Server shutdown: %v", err)
	}
	exports.Wait()
}
