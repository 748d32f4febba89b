// Package config holds the worker's own process-level configuration —
// the handful of settings cmd/swift-lsp-worker resolves from flags and
// environment variables and hands to internal/worker and
// internal/lspadapter at construction time.
package config

import (
	"sync"
	"time"
)

// Config holds worker configuration options. Zero value is invalid for
// DylibPath; Defaults fills in everything else.
type Config struct {
	// ExcludedSchemes lists URI schemes diagnostics are never published
	// for (spec.md §3). Defaults to {"git", "hg"}.
	ExcludedSchemes []string

	// RequestTimeout sets a deadline on the ctx the worker passes to the
	// client for each compiler-service request. Neither the FFI client nor
	// the fake consults ctx, so it does not interrupt a request in
	// progress. Zero means no deadline.
	RequestTimeout time.Duration

	// DylibPath is the filesystem path to the sourcekitd dylib.
	DylibPath string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
}

// Defaults returns the configuration cmd/swift-lsp-worker falls back to
// when no flag or environment variable overrides a field.
func Defaults() *Config {
	return &Config{
		ExcludedSchemes: []string{"git", "hg"},
		RequestTimeout:  30 * time.Second,
		LogLevel:        "warn",
	}
}

// Store holds a *Config behind a lock, matching the teacher's
// Server.Config/UpdateConfig shape: callers read a consistent snapshot
// via Get and mutate atomically via Update.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStore wraps cfg in a Store. A nil cfg is replaced with Defaults().
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = Defaults()
	}
	return &Store{cfg: cfg}
}

// Get returns the current configuration.
func (s *Store) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update calls fn with the current configuration under a write lock,
// for in-place field updates (e.g. from a future workspace/didChangeConfiguration
// handler).
func (s *Store) Update(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cfg)
}
