package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iconforge/iconforge/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.DefaultQuality != 80 {
		t.Errorf("quality: got %d, want 80", cfg.DefaultQuality)
	}
	if cfg.DefaultFormat != "webp" {
		t.Errorf("format: got %q, want webp", cfg.DefaultFormat)
	}
	if !cfg.EnableAVIF {
		t.Error("AVIF disabled by default")
	}
	if len(cfg.IconSizes) != 9 || cfg.IconSizes[0] != 16 || cfg.IconSizes[8] != 512 {
		t.Errorf("icon sizes: got %v", cfg.IconSizes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero quality", func(c *config.Config) { c.DefaultQuality = 0 }},
		{"quality above range", func(c *config.Config) { c.DefaultQuality = 101 }},
		{"negative workers", func(c *config.Config) { c.WorkerCount = -1 }},
		{"zero icon size", func(c *config.Config) { c.IconSizes = []int{16, 0} }},
		{"negative resize", func(c *config.Config) { c.Resize.Width = -10 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := config.Validate(cfg); err == nil {
				t.Error("validation passed, want error")
			}
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultQuality != config.Default().DefaultQuality {
		t.Error("missing file did not return defaults")
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iconforge.yaml")
	body := "worker_count: 6\ndefault_quality: 55\nresize:\n  width: 640\n  height: 480\n  keep_aspect_ratio: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkerCount != 6 || cfg.DefaultQuality != 55 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Resize.Width != 640 || cfg.Resize.Height != 480 || !cfg.Resize.KeepAspectRatio {
		t.Errorf("resize not applied: %+v", cfg.Resize)
	}
	// Untouched fields keep their defaults.
	if cfg.DefaultFormat != "webp" {
		t.Errorf("default format lost: %q", cfg.DefaultFormat)
	}
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iconforge.yaml")
	if err := os.WriteFile(path, []byte("default_quality: 400\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("invalid config accepted")
	}
}
