package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{Database: DatabaseConfig{Addrs: []string{"localhost:6379"}}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_PageSizeTooLarge(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.PageSize = MaxPageSize + 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for oversized page")
	}
}

func TestValidate_Geolocation(t *testing.T) {
	tests := []struct {
		name    string
		geo     GeolocationConfig
		wantErr bool
	}{
		{"static ok", GeolocationConfig{Provider: ProviderStatic, Latitude: 48.85, Longitude: 2.35}, false},
		{"static out of range", GeolocationConfig{Provider: ProviderStatic, Latitude: 91}, true},
		{"geoip ok", GeolocationConfig{Provider: ProviderGeoIP, GeoIPDB: "/data/GeoLite2-City.mmdb"}, false},
		{"geoip without db", GeolocationConfig{Provider: ProviderGeoIP}, true},
		{"unknown provider", GeolocationConfig{Provider: "gps"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Geolocation = tc.geo
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "dae:" {
		t.Errorf("expected KeyPrefix='dae:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Storage.PageSize != 500 {
		t.Errorf("expected PageSize=500, got %d", cfg.Storage.PageSize)
	}
	if cfg.Geolocation.Provider != ProviderStatic {
		t.Errorf("expected Provider=static, got %q", cfg.Geolocation.Provider)
	}
	if cfg.Seed.BatchSize != 200 {
		t.Errorf("expected BatchSize=200, got %d", cfg.Seed.BatchSize)
	}
	if cfg.Seed.Concurrency != 4 {
		t.Errorf("expected Concurrency=4, got %d", cfg.Seed.Concurrency)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Storage:  StorageConfig{KeyPrefix: "custom:", PageSize: 50},
		Seed:     SeedConfig{BatchSize: 10, Concurrency: 1},
	}
	cfg.ApplyDefaults()

	if cfg.Database.ReadinessTimeout != 15 {
		t.Errorf("expected ReadinessTimeout=15, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "custom:" || cfg.Storage.PageSize != 50 {
		t.Errorf("storage overridden: %+v", cfg.Storage)
	}
	if cfg.Seed.BatchSize != 10 || cfg.Seed.Concurrency != 1 {
		t.Errorf("seed overridden: %+v", cfg.Seed)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DAE_REDIS", "redis:6379")
	in := []byte("a: ${DAE_REDIS}\nb: ${DAE_UNSET_VAR:-fallback}\nc: ${DAE_UNSET_VAR}\n")
	want := "a: redis:6379\nb: fallback\nc: \n"
	if got := string(expandEnvVars(in)); got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `database:
  addrs: ["${DAE_TEST_ADDR:-localhost:6379}"]
geolocation:
  latitude: 45.764
  longitude: 4.8357
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unit.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.Geolocation.Latitude != 45.764 || cfg.Storage.KeyPrefix != "dae:" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a missing config file")
		}
	}()
	MustLoad("no-such-env")
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
