package main

import (
	"os"
	"testing"
	"time"

	"github.com/abune-media/media-service/internal/configuration"
)

func TestMain(m *testing.M) {
	// Setup code here (runs once before all tests in this package)
	println("Setting up tests for main package...")

	exitCode := m.Run()

	// Teardown code here (runs once after all tests in this package)
	println("Tearing down tests for main package...")

	os.Exit(exitCode)
}

func TestConfigDefaults(t *testing.T) {
	cfg := configuration.Load()

	if cfg.Server.Port == "" {
		t.Error("server port default missing")
	}
	if cfg.Transcoder.Timeout != 30*time.Minute {
		t.Errorf("unexpected transcoder timeout default: %s", cfg.Transcoder.Timeout)
	}
	if cfg.Transcoder.MaxConcurrent != 2 {
		t.Errorf("unexpected transcoder concurrency default: %d", cfg.Transcoder.MaxConcurrent)
	}
}
