package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the board server configuration.
type Config struct {
	ServerHost string
	ServerPort int

	// Origins allowed for CORS and the websocket handshake. "*" allows any.
	AllowedOrigins []string

	// Coordinator
	StrictShapes bool
	SendBuffer   int

	// PNG export worker pool
	RenderWorkers   int
	RenderQueueSize int
	CanvasWidth     int
	CanvasHeight    int
	BackgroundColor string

	// Observability
	TracingEnabled bool
	JaegerEndpoint string

	// LAN discovery
	MDNSEnabled  bool
	MDNSInstance string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 3001),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		StrictShapes: getEnvBool("STRICT_SHAPES", false),
		SendBuffer:   getEnvInt("SEND_BUFFER", 64),

		RenderWorkers:   getEnvInt("RENDER_WORKERS", 2),
		RenderQueueSize: getEnvInt("RENDER_QUEUE_SIZE", 16),
		CanvasWidth:     getEnvInt("CANVAS_WIDTH", 1280),
		CanvasHeight:    getEnvInt("CANVAS_HEIGHT", 800),
		BackgroundColor: getEnv("BACKGROUND_COLOR", "#ffffff"),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),

		MDNSEnabled:  getEnvBool("MDNS_ENABLED", true),
		MDNSInstance: getEnv("MDNS_INSTANCE", defaultInstance()),
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}

	return cfg, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultInstance() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "whiteboard"
}
