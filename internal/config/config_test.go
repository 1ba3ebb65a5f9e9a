package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/mdview/internal/config"
)

func writeConfig(t *testing.T, home string, data map[string]any) {
	t.Helper()
	configPath := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("failed to create config directory: %v", err)
	}
	raw, err := yaml.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal config data: %v", err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestLoadEmptyConfigCreatesDefaultCatalog(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	if err := config.EnsureConfigExists(home); err != nil {
		t.Fatalf("EnsureConfigExists returned error: %v", err)
	}

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CurrentCatalog != "default" {
		t.Fatalf("expected default catalog, got %q", cfg.CurrentCatalog)
	}
	c, err := cfg.ActiveCatalog()
	if err != nil {
		t.Fatalf("ActiveCatalog returned error: %v", err)
	}
	if c.SearchPath != "q" || c.PageSize != 20 || c.Formatter.CacheSize != 64 || c.Log.Level != "info" {
		t.Fatalf("expected defaults to be applied, got %+v", c)
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected an unconfigured catalog to fail validation")
	}
}

func TestLoadDerivesEndpointsFromBaseURL(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"current_catalog": "geo",
		"catalogs": map[string]any{
			"geo": map[string]any{"base_url": "https://catalog.example.org/geonetwork/srv/eng/"},
		},
	})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	c, _ := cfg.ActiveCatalog()

	if want := "https://catalog.example.org/geonetwork/srv/eng/md.format.xml?xsl=xsl-view&uuid="; c.Formatter.URL != want {
		t.Fatalf("expected formatter url %q, got %q", want, c.Formatter.URL)
	}
	if want := "https://catalog.example.org/geonetwork/srv/eng/catalog.search#"; c.AddressBase != want {
		t.Fatalf("expected address base %q, got %q", want, c.AddressBase)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid catalog, got %v", err)
	}
}

func TestLoadPicksFirstCatalogWithoutCurrent(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"catalogs": map[string]any{
			"zeta":  map[string]any{"base_url": "https://z.example.org"},
			"alpha": map[string]any{"base_url": "https://a.example.org"},
		},
	})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CurrentCatalog != "alpha" {
		t.Fatalf("expected alphabetically first catalog, got %q", cfg.CurrentCatalog)
	}
}

func TestLoadRejectsUnknownCurrentCatalog(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"current_catalog": "missing",
		"catalogs": map[string]any{
			"geo": map[string]any{"base_url": "https://catalog.example.org"},
		},
	})

	if _, err := config.Load(home); err == nil {
		t.Fatalf("expected an error for an unknown current catalog")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog config.Catalog
		wantErr bool
	}{
		{name: "valid", catalog: config.Catalog{BaseURL: "https://a.example.org"}},
		{name: "missing base url", catalog: config.Catalog{}, wantErr: true},
		{name: "relative base url", catalog: config.Catalog{BaseURL: "catalog/srv"}, wantErr: true},
		{
			name:    "bad formatter url",
			catalog: config.Catalog{BaseURL: "https://a.example.org", Formatter: config.FormatterConfig{URL: "/formatter"}},
			wantErr: true,
		},
		{
			name:    "bad log level",
			catalog: config.Catalog{BaseURL: "https://a.example.org", Log: config.LogConfig{Level: "loud"}},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			catalog: config.Catalog{BaseURL: "https://a.example.org", HTTP: config.HTTPConfig{Timeout: -time.Second}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.catalog
			if c.Log.Level == "" {
				c.Log.Level = "info"
			}
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMissingBaseURLIsInitError(t *testing.T) {
	c := config.Catalog{Log: config.LogConfig{Level: "info"}}
	var initErr *config.ConfigInitError
	if err := c.Validate(); !errors.As(err, &initErr) {
		t.Fatalf("expected ConfigInitError, got %v", err)
	}
}

func TestAddAndSwitchCatalogPersist(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	if err := config.EnsureConfigExists(home); err != nil {
		t.Fatalf("EnsureConfigExists returned error: %v", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if err := cfg.AddCatalog("geo", &config.Catalog{BaseURL: "https://geo.example.org"}, false); err != nil {
		t.Fatalf("AddCatalog returned error: %v", err)
	}
	if cfg.CurrentCatalog != "geo" {
		t.Fatalf("expected the first configured catalog to replace the placeholder, got %q", cfg.CurrentCatalog)
	}
	if err := cfg.AddCatalog("ocean", &config.Catalog{BaseURL: "https://ocean.example.org"}, false); err != nil {
		t.Fatalf("AddCatalog returned error: %v", err)
	}
	if cfg.CurrentCatalog != "geo" {
		t.Fatalf("expected current catalog to stay geo, got %q", cfg.CurrentCatalog)
	}
	if err := cfg.AddCatalog("ocean", &config.Catalog{BaseURL: "https://other.example.org"}, false); err == nil {
		t.Fatalf("expected duplicate catalog to be rejected")
	}
	if err := cfg.SwitchCatalog("ocean"); err != nil {
		t.Fatalf("SwitchCatalog returned error: %v", err)
	}

	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if reloaded.CurrentCatalog != "ocean" {
		t.Fatalf("expected persisted current catalog ocean, got %q", reloaded.CurrentCatalog)
	}
	names := reloaded.CatalogNames()
	if len(names) != 3 || names[0] != "default" || names[1] != "geo" || names[2] != "ocean" {
		t.Fatalf("unexpected catalog names %v", names)
	}
}

func TestRemoveCatalog(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"current_catalog": "geo",
		"catalogs": map[string]any{
			"geo":   map[string]any{"base_url": "https://geo.example.org"},
			"ocean": map[string]any{"base_url": "https://ocean.example.org"},
		},
	})
	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if err := cfg.RemoveCatalog("geo"); err != nil {
		t.Fatalf("RemoveCatalog returned error: %v", err)
	}
	if cfg.CurrentCatalog != "ocean" {
		t.Fatalf("expected ocean to become current, got %q", cfg.CurrentCatalog)
	}
	if err := cfg.RemoveCatalog("ocean"); err == nil {
		t.Fatalf("expected removing the last catalog to fail")
	}
}

func TestEffectiveAppliesOverrides(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"current_catalog": "geo",
		"catalogs": map[string]any{
			"geo": map[string]any{
				"base_url":  "https://geo.example.org",
				"formatter": map[string]any{"append": false},
			},
		},
	})
	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	viper.Set("formatter.append", true)
	viper.Set("base_url", "https://mirror.example.org")

	eff, err := cfg.Effective()
	if err != nil {
		t.Fatalf("Effective returned error: %v", err)
	}
	if !eff.Formatter.Append || eff.BaseURL != "https://mirror.example.org" {
		t.Fatalf("expected overrides to apply, got %+v", eff)
	}
	active, _ := cfg.ActiveCatalog()
	if active.BaseURL != "https://geo.example.org" || active.Formatter.Append {
		t.Fatalf("expected stored catalog to stay untouched, got %+v", active)
	}
}
