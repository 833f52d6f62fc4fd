package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Auth.JWTTTL != 24*time.Hour || cfg.Auth.BcryptCost != 12 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.LoginMaxAttempts != 5 || cfg.Auth.LoginWindow != 15*time.Minute {
		t.Fatalf("unexpected login throttle defaults: %+v", cfg.Auth)
	}
	if cfg.Storage.Backend != StorageFilesystem || cfg.Storage.UploadMaxBytes != 10<<20 {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.IsProduction() {
		t.Fatal("default env is development")
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":  {},
		"short secret":    {"JWT_SECRET": "short"},
		"bad ttl":         {"JWT_SECRET": secret, "JWT_TTL": "soon"},
		"tiny ttl":        {"JWT_SECRET": secret, "JWT_TTL": "10ms"},
		"unknown backend": {"JWT_SECRET": secret, "STORAGE_BACKEND": "floppy"},
		"minio endpoint":  {"JWT_SECRET": secret, "STORAGE_BACKEND": "minio"},
		"bootstrap pass":  {"JWT_SECRET": secret, "BOOTSTRAP_ADMIN_USERNAME": "admin"},
	}
	for name, env := range cases {
		if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      secret,
		"JWT_TTL":         "2h",
		"ENV":             "Production",
		"STORAGE_BACKEND": "minio",
		"MINIO_ENDPOINT":  "localhost:9000",
		"MINIO_USE_SSL":   "true",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTTTL != 2*time.Hour || !cfg.IsProduction() || !cfg.Minio.UseSSL {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if strings.TrimSpace(cfg.Minio.Bucket) == "" {
		t.Fatal("expected default bucket")
	}
}
