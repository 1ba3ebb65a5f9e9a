package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spf13/viper"
)

type FormatterConfig struct {
	URL       string `yaml:"url"        json:"url"`
	Style     string `yaml:"style"      json:"style"`
	Append    bool   `yaml:"append"     json:"append"`
	CacheSize int    `yaml:"cache_size" json:"cache_size"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file"  json:"file"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Catalog is one configured catalog endpoint.
type Catalog struct {
	BaseURL     string          `yaml:"base_url"     json:"base_url"`
	SearchPath  string          `yaml:"search_path"  json:"search_path"`
	AddressBase string          `yaml:"address_base" json:"address_base"`
	PageSize    int             `yaml:"page_size"    json:"page_size"`
	Formatter   FormatterConfig `yaml:"formatter"    json:"formatter"`
	Log         LogConfig       `yaml:"log"          json:"log"`
	HTTP        HTTPConfig      `yaml:"http"         json:"http"`
}

type Config struct {
	Catalogs       map[string]*Catalog `yaml:"catalogs"        json:"catalogs"`
	CurrentCatalog string              `yaml:"current_catalog" json:"current_catalog"`

	home   string   `yaml:"-"`
	active *Catalog `yaml:"-"`
}

const (
	defaultCatalogName = "default"
	defaultSearchPath  = "q"
	defaultPageSize    = 20
	defaultCacheSize   = 64
	defaultLogLevel    = "info"
)

var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func newCatalog() *Catalog {
	c := &Catalog{}
	c.ensureDefaults()
	return c
}

func (c *Catalog) ensureDefaults() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.SearchPath = strings.TrimSpace(c.SearchPath)
	if c.SearchPath == "" {
		c.SearchPath = defaultSearchPath
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.Formatter.CacheSize <= 0 {
		c.Formatter.CacheSize = defaultCacheSize
	}
	if c.Formatter.URL == "" && c.BaseURL != "" {
		c.Formatter.URL = strings.TrimRight(c.BaseURL, "/") + "/md.format.xml?xsl=xsl-view&uuid="
	}
	if c.AddressBase == "" && c.BaseURL != "" {
		c.AddressBase = strings.TrimRight(c.BaseURL, "/") + "/catalog.search#"
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// Validate reports the first invalid field of the catalog.
func (c *Catalog) Validate() error {
	if c.BaseURL == "" {
		return &ConfigInitError{msg: "required config variable \"base_url\" is not set"}
	}
	for name, raw := range map[string]string{
		"base_url":      c.BaseURL,
		"formatter.url": c.Formatter.URL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: %q is not an absolute url", name, raw)
		}
	}
	if !ValidLogLevels[c.Log.Level] {
		return fmt.Errorf(
			"invalid log level: %q. Please choose from 'debug', 'info', 'warn', or 'error'",
			c.Log.Level,
		)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("invalid http timeout: %s", c.HTTP.Timeout)
	}
	return nil
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) != 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.home = home

	if err := cfg.ensureInitialized(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) ensureInitialized() error {
	if cfg.Catalogs == nil {
		cfg.Catalogs = make(map[string]*Catalog)
	}

	if cfg.CurrentCatalog == "" {
		if len(cfg.Catalogs) == 0 {
			cfg.Catalogs[defaultCatalogName] = newCatalog()
			cfg.CurrentCatalog = defaultCatalogName
		} else {
			cfg.CurrentCatalog = cfg.CatalogNames()[0]
		}
	}

	return cfg.setActiveCatalog(cfg.CurrentCatalog)
}

func (cfg *Config) setActiveCatalog(name string) error {
	if name == "" {
		return fmt.Errorf("catalog name cannot be empty")
	}
	c, ok := cfg.Catalogs[name]
	if !ok {
		return fmt.Errorf("catalog %q does not exist", name)
	}
	if c == nil {
		c = newCatalog()
		cfg.Catalogs[name] = c
	}

	c.ensureDefaults()
	cfg.CurrentCatalog = name
	cfg.active = c

	syncCatalogWithViper(name, c)

	return nil
}

// syncCatalogWithViper publishes the active catalog as viper defaults, so
// MDVIEW_* environment variables and bound flags take precedence.
func syncCatalogWithViper(name string, c *Catalog) {
	viper.SetDefault("catalog", name)
	viper.SetDefault("base_url", c.BaseURL)
	viper.SetDefault("search_path", c.SearchPath)
	viper.SetDefault("address_base", c.AddressBase)
	viper.SetDefault("page_size", c.PageSize)
	viper.SetDefault("formatter.url", c.Formatter.URL)
	viper.SetDefault("formatter.style", c.Formatter.Style)
	viper.SetDefault("formatter.append", c.Formatter.Append)
	viper.SetDefault("formatter.cache_size", c.Formatter.CacheSize)
	viper.SetDefault("log.level", c.Log.Level)
	viper.SetDefault("log.file", c.Log.File)
	viper.SetDefault("http.timeout", c.HTTP.Timeout)
}

// Effective returns a copy of the active catalog with environment overrides
// applied.
func (cfg *Config) Effective() (*Catalog, error) {
	c, err := cfg.ActiveCatalog()
	if err != nil {
		return nil, err
	}

	out := *c
	out.BaseURL = viper.GetString("base_url")
	out.SearchPath = viper.GetString("search_path")
	out.AddressBase = viper.GetString("address_base")
	out.PageSize = viper.GetInt("page_size")
	out.Formatter.URL = viper.GetString("formatter.url")
	out.Formatter.Style = viper.GetString("formatter.style")
	out.Formatter.Append = viper.GetBool("formatter.append")
	out.Formatter.CacheSize = viper.GetInt("formatter.cache_size")
	out.Log.Level = viper.GetString("log.level")
	out.Log.File = viper.GetString("log.file")
	out.HTTP.Timeout = viper.GetDuration("http.timeout")
	out.ensureDefaults()

	return &out, nil
}

func (cfg *Config) ActiveCatalog() (*Catalog, error) {
	if cfg.active != nil {
		return cfg.active, nil
	}

	if cfg.CurrentCatalog == "" {
		return nil, fmt.Errorf("no catalog is currently selected")
	}

	if err := cfg.setActiveCatalog(cfg.CurrentCatalog); err != nil {
		return nil, err
	}

	return cfg.active, nil
}

func (cfg *Config) CatalogNames() []string {
	names := make([]string, 0, len(cfg.Catalogs))
	for name := range cfg.Catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cfg *Config) SwitchCatalog(name string) error {
	if err := cfg.setActiveCatalog(name); err != nil {
		return err
	}
	return cfg.Save()
}

func (cfg *Config) ActivateCatalog(name string) error {
	return cfg.setActiveCatalog(name)
}

func (cfg *Config) AddCatalog(name string, c *Catalog, makeCurrent bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("catalog name cannot be empty")
	}

	if cfg.Catalogs == nil {
		cfg.Catalogs = make(map[string]*Catalog)
	}

	if existing, exists := cfg.Catalogs[trimmed]; exists && existing.BaseURL != "" {
		return fmt.Errorf("catalog %q already exists", trimmed)
	}

	if c == nil {
		c = newCatalog()
	}
	c.ensureDefaults()
	if err := c.Validate(); err != nil {
		return err
	}
	cfg.Catalogs[trimmed] = c

	if cfg.CurrentCatalog == "" || makeCurrent || cfg.active == nil || cfg.active.BaseURL == "" {
		if err := cfg.setActiveCatalog(trimmed); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) RemoveCatalog(name string) error {
	if len(cfg.Catalogs) <= 1 {
		return fmt.Errorf("cannot remove the last catalog")
	}

	if _, exists := cfg.Catalogs[name]; !exists {
		return fmt.Errorf("catalog %q does not exist", name)
	}

	delete(cfg.Catalogs, name)

	if cfg.CurrentCatalog == name {
		cfg.active = nil
		cfg.CurrentCatalog = ""
		if err := cfg.ensureInitialized(); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) GetConfigPath() string {
	if cfg.home != "" {
		return GetConfigPath(cfg.home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

func (cfg *Config) Save() error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}
