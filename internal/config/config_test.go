package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("unexpected default addr %q", cfg.Server.Addr)
	}
	if cfg.Pagination.PageSize != 20 {
		t.Errorf("unexpected default page size %d", cfg.Pagination.PageSize)
	}
	if cfg.Media.Backend != "local" {
		t.Errorf("unexpected default media backend %q", cfg.Media.Backend)
	}
	if cfg.Cache.FaviconMaxAge == 0 {
		t.Error("favicon max-age should be non-zero outside debug mode")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("KORUVA_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("KORUVA_PAGINATION_PAGESIZE", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("expected env addr, got %q", cfg.Server.Addr)
	}
	if cfg.Pagination.PageSize != 5 {
		t.Errorf("expected env page size, got %d", cfg.Pagination.PageSize)
	}
}

func TestDebugDisablesCaching(t *testing.T) {
	t.Setenv("KORUVA_SERVER_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Server.Debug {
		t.Fatal("expected debug mode")
	}
	if cfg.Cache.RobotsMaxAge != 0 || cfg.Cache.SecurityMaxAge != 0 || cfg.Cache.FaviconMaxAge != 0 {
		t.Errorf("debug mode should zero cache max-ages, got %+v", cfg.Cache)
	}
}
