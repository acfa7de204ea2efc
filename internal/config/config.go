// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package config

import "time"

// Config holds the complete process configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Realtime   RealtimeConfig   `koanf:"realtime"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// StorageConfig holds the document store settings.
type StorageConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is true.
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// Circuit breaker around storage reads.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`

	// GCInterval is the value log garbage collection period. Zero disables it.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// RealtimeConfig tunes the socket delivery layer.
type RealtimeConfig struct {
	// ParticipantCacheTTL bounds how long a chat's participant set is reused
	// before storage is consulted again.
	ParticipantCacheTTL time.Duration `koanf:"participant_cache_ttl"`

	// BatchMaxMessages triggers an immediate flush of a chat's pending batch.
	BatchMaxMessages int `koanf:"batch_max_messages"`

	// BatchWindow is the delay after the first queued message before a flush.
	BatchWindow time.Duration `koanf:"batch_window"`

	SendBuffer     int           `koanf:"send_buffer"`
	StorageTimeout time.Duration `koanf:"storage_timeout"`
	EventRate      float64       `koanf:"event_rate"`
	EventBurst     int           `koanf:"event_burst"`
	MaxMessageSize int64         `koanf:"max_message_size"`
}

// SecurityConfig holds authentication and HTTP hardening settings
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	RateLimitOff    bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// SupervisorConfig tunes the suture supervisor tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (lowest first).
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
