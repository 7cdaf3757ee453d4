package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func initFileLogger(t *testing.T, level, path string) {
	t.Helper()
	cfg := FileConfig{
		Path:       path,
		MaxSizeMB:  10,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("InitWithFileConfig: %v", err)
	}
}

func TestBeforeInitDoesNotPanic(t *testing.T) {
	// The package starts with a nop logger, so early callers are safe.
	Debug("early debug")
	Info("early info")
	Sync()
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	initFileLogger(t, "debug", path)

	Info("surface normals rebuilt")
	Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(content), "surface normals rebuilt") {
		t.Errorf("log file missing message, got: %q", content)
	}
	if !strings.Contains(string(content), "INFO") {
		t.Errorf("log file missing level tag, got: %q", content)
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
		// Unknown levels fall back to info.
		{"verbose", []string{"INFO"}, []string{"DEBUG"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.level+".log")
			initFileLogger(t, tt.level, path)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading log file: %v", err)
			}
			for _, want := range tt.expected {
				if !strings.Contains(string(content), want) {
					t.Errorf("level %s: expected %s in output", tt.level, want)
				}
			}
			for _, unwanted := range tt.excluded {
				if strings.Contains(string(content), unwanted) {
					t.Errorf("level %s: unexpected %s in output", tt.level, unwanted)
				}
			}
		})
	}
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studio.log")

	// 1MB is the smallest size lumberjack accepts; write past it so at
	// least one rotation happens.
	cfg := FileConfig{
		Path:       path,
		MaxSizeMB:  1,
		MaxBackups: 2,
		MaxAgeDays: 1,
	}
	if err := InitWithFileConfig("info", cfg, false); err != nil {
		t.Fatalf("InitWithFileConfig: %v", err)
	}

	filler := strings.Repeat("v", 240)
	for i := 0; i < 8000; i++ {
		Sugar.Infow("import pass", "iteration", i, "payload", filler)
	}
	Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("active log file missing: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading log dir: %v", err)
	}
	var logs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "studio") && strings.Contains(e.Name(), ".log") {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) < 2 {
		t.Errorf("expected the active file plus at least one rotated file, got %v", logs)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("studio.log")

	if cfg.Path != "studio.log" {
		t.Errorf("Path = %q, want studio.log", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 || cfg.MaxBackups != 4 || cfg.MaxAgeDays != 14 {
		t.Errorf("unexpected rotation defaults: %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("Compress should default to true")
	}
}
