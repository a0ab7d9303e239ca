package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("HTTPPort=%d, want 8080", cfg.HTTPPort)
	}
	if cfg.BadgeCacheSize != 512 || cfg.AnimationCacheSize != 256 {
		t.Fatalf("cache sizes = %d/%d, want 512/256", cfg.BadgeCacheSize, cfg.AnimationCacheSize)
	}
	if cfg.DefaultLanguage != "en" {
		t.Fatalf("DefaultLanguage=%q, want en", cfg.DefaultLanguage)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected shared cache disabled by default, got addr %q", cfg.RedisAddr)
	}
}

func TestLoadReadsEnvKeys(t *testing.T) {
	t.Setenv("TIMERBADGE_HTTP_PORT", "9090")
	t.Setenv("TIMERBADGE_DEFAULT_LANG", "ET")
	t.Setenv("TIMERBADGE_ANIMATION_CACHE_SIZE", "64")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Fatalf("HTTPPort=%d, want 9090", cfg.HTTPPort)
	}
	if cfg.DefaultLanguage != "et" {
		t.Fatalf("DefaultLanguage=%q, want et (lowercased)", cfg.DefaultLanguage)
	}
	if cfg.AnimationCacheSize != 64 {
		t.Fatalf("AnimationCacheSize=%d, want 64", cfg.AnimationCacheSize)
	}
}

func TestLoadRejectsMissingFontPath(t *testing.T) {
	t.Setenv("TIMERBADGE_FONT_PATH", "/nonexistent/RobotoMono-Bold.ttf")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for missing font file")
	}
}

func TestLoadRejectsNonPositiveCacheSize(t *testing.T) {
	t.Setenv("TIMERBADGE_BADGE_CACHE_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for zero cache size")
	}
}

func TestFontDataPrefersConfiguredPath(t *testing.T) {
	fontFile := filepath.Join(t.TempDir(), "face.ttf")
	if err := os.WriteFile(fontFile, []byte("not really a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TIMERBADGE_FONT_PATH", fontFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	fallback := []byte("embedded")
	data, err := cfg.FontData(fallback)
	if err != nil {
		t.Fatalf("font data: %v", err)
	}
	if string(data) != "not really a font" {
		t.Fatalf("expected configured font file contents, got %q", data)
	}

	cfg.FontPath = ""
	data, err = cfg.FontData(fallback)
	if err != nil {
		t.Fatalf("font data fallback: %v", err)
	}
	if string(data) != "embedded" {
		t.Fatalf("expected fallback font, got %q", data)
	}
}
