package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "strategy_studio" || cfg.Regen.Workers != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.ClipboardTTL != time.Hour {
		t.Fatalf("unexpected clipboard ttl: %v", cfg.Session.ClipboardTTL)
	}
}

func TestLoadFrom_ProductionNeedsSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err == nil {
		t.Fatalf("expected error without JWT_SECRET in production")
	}

	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":        "production",
		"JWT_SECRET": "s3cret",
		"REDIS_DB":   "2",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if !cfg.IsProduction() || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
