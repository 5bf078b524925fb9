// Package testsupport provides shared fixtures for package tests:
// fully-populated configs over temp directories and pre-opened stores.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/ebreen/luffe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Instagram.Username = "luffe.bot"
	cfg.Instagram.SessionToken = "test-session"
	cfg.AudD.APIToken = "test-token"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithInstagramBaseURL points the Instagram client at a test server.
func WithInstagramBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Instagram.BaseURL = url
	}
}
