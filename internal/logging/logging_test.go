package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	logger, err := New(false, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("Debug level should be disabled by default")
	}

	debugLogger, err := New(true, "")
	if err != nil {
		t.Fatalf("New(debug) error = %v", err)
	}
	if !debugLogger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("Debug level should be enabled with debug=true")
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, err := New(true, path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Infow("cycle", "blocks", 3)
	logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), `"blocks":3`) {
		t.Errorf("log file content = %q", content)
	}
}

func TestDebugFileName(t *testing.T) {
	now := time.Date(2025, 1, 31, 18, 4, 5, 0, time.UTC)
	name := filepath.Base(DebugFileName(now))
	if name != "debug_2025.01.31_18.04.05.log" {
		t.Errorf("DebugFileName() = %s", name)
	}
}
