package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whiteboard/internal/api"
	"whiteboard/internal/config"
	"whiteboard/internal/discovery"
	"whiteboard/internal/services"
	"whiteboard/internal/services/collaboration"
	"whiteboard/internal/telemetry"
)

/*
LEARNING: GRACEFUL SHUTDOWN PATTERN

Startup order: config, tracing, coordinator, render pool, HTTP, mDNS.
Shutdown runs the other way round, so no HTTP request can reach a
coordinator or render pool that is already gone.
*/

func main() {
	log.Println("🚀 Starting whiteboard server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	tracingShutdown, err := telemetry.Setup(cfg.TracingEnabled, cfg.JaegerEndpoint)
	if err != nil {
		log.Printf("⚠️  Failed to initialize Jaeger: %v (continuing without tracing)", err)
		tracingShutdown = func(ctx context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(ctx); err != nil {
			log.Printf("⚠️  Failed to shutdown Jaeger: %v", err)
		}
	}()

	// The coordinator owns the one authoritative shape list.
	coordinator := collaboration.NewCoordinator(collaboration.WithStrictShapes(cfg.StrictShapes))
	coordinator.Start()

	renderService := services.NewRenderService(services.RenderOptions{
		Width:      cfg.CanvasWidth,
		Height:     cfg.CanvasHeight,
		Background: cfg.BackgroundColor,
	}, cfg.RenderWorkers, cfg.RenderQueueSize)
	renderService.Start()

	wsHandler := collaboration.NewWebSocketHandler(coordinator, cfg.AllowedOrigins, cfg.SendBuffer)
	handler := api.NewHandler(coordinator, renderService, wsHandler)
	router := api.SetupRoutes(handler, cfg.AllowedOrigins)

	// No WriteTimeout: websocket connections are long-lived.
	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://%s", cfg.Addr())
		log.Printf("📚 Endpoints:")
		log.Printf("   GET /ws, /socket     - Board websocket (shapes:init / shapes:update)")
		log.Printf("   GET /api/health      - Health and client count")
		log.Printf("   GET /api/shapes      - Current shape list")
		log.Printf("   GET /api/board.png   - Board snapshot as PNG")
		log.Println()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	if cfg.MDNSEnabled {
		mdnsServer, err := discovery.Advertise(cfg.MDNSInstance, cfg.ServerPort)
		if err != nil {
			log.Printf("⚠️  mDNS advertise failed: %v (board is still reachable by address)", err)
		} else {
			defer mdnsServer.Shutdown()
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; the
	// coordinator closes them below.
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	coordinator.Shutdown()
	renderService.Shutdown()

	log.Println("✓ Server shutdown complete")
}
