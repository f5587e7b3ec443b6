package runner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightcone.toml")
	data := `
program = "twin.lc"
watch = true
frame_rate = 12
sticky_path = "sticky.db"
verbosity = 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write error: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Program != "twin.lc" || !cfg.Watch || cfg.FrameRate != 12 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.StickyPath != "sticky.db" || cfg.Verbosity != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightcone.toml")
	if err := os.WriteFile(path, []byte(`program = "p.lc"`), 0o644); err != nil {
		t.Fatalf("write error: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.FrameRate != DefaultConfig().FrameRate {
		t.Errorf("frame rate = %d, want the default", cfg.FrameRate)
	}
}

func TestLoadConfigRejectsBadRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightcone.toml")
	if err := os.WriteFile(path, []byte(`frame_rate = -1`), 0o644); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("negative frame_rate should fail")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing config should fail")
	}
}
