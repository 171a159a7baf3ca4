// Package config provides centralized configuration management for weldview.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Chart    ChartConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1, local use only)
	Host string `env:"WELDVIEW_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"WELDVIEW_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 30s)
	ReadTimeout time.Duration `env:"WELDVIEW_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"WELDVIEW_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"WELDVIEW_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"WELDVIEW_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the per-request middleware timeout (default: 60s)
	RequestTimeout time.Duration `env:"WELDVIEW_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds file ingestion settings.
type UploadConfig struct {
	// MaxFileSize is the maximum size of one file in bytes (default: 100MB)
	MaxFileSize int64 `env:"WELDVIEW_MAX_FILE_SIZE" default:"104857600"`

	// MaxRequestSize is the maximum size of one upload request (default: 512MB)
	MaxRequestSize int64 `env:"WELDVIEW_MAX_REQUEST_SIZE" default:"536870912"`

	// ReadConcurrency is how many files of one batch are read in parallel (default: 4)
	ReadConcurrency int `env:"WELDVIEW_READ_CONCURRENCY" default:"4"`

	// MaxConcurrent is the maximum number of upload requests processed at once (default: 2)
	MaxConcurrent int `env:"WELDVIEW_UPLOAD_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long a request waits for an upload slot (default: 30s)
	MaxWaitTime time.Duration `env:"WELDVIEW_UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// ChartConfig holds rendering settings.
type ChartConfig struct {
	// Width of the rendered chart in pixels (default: 1400)
	Width int `env:"WELDVIEW_CHART_WIDTH" default:"1400"`

	// Height of the rendered chart in pixels (default: 800)
	Height int `env:"WELDVIEW_CHART_HEIGHT" default:"800"`

	// MergeGap joins active regions separated by at most this many inactive
	// samples; 0 reports every region as detected (default: 0)
	MergeGap int `env:"WELDVIEW_REGION_MERGE_GAP" default:"0"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"WELDVIEW_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
