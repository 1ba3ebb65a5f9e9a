package state

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Paintersrp/mdview/internal/catalog"
	"github.com/Paintersrp/mdview/internal/config"
	"github.com/Paintersrp/mdview/internal/constants"
	"github.com/Paintersrp/mdview/internal/display"
	"github.com/Paintersrp/mdview/internal/location"
	"github.com/Paintersrp/mdview/internal/logging"
	"github.com/Paintersrp/mdview/internal/loop"
	"github.com/Paintersrp/mdview/internal/mdview"
)

// defaultWidth is the detail width used until a terminal reports its size.
const defaultWidth = 80

type State struct {
	Config      *config.Config
	Catalog     *config.Catalog
	CatalogName string
	Home        string
	Logger      *logging.Logger
	Client      *catalog.Client
	Location    *location.Router
	Loop        *loop.Loop
	Renderer    *display.Renderer
	Document    *display.Document
	Manager     *mdview.Manager
	Lifecycle   *mdview.Lifecycle
	Formatter   *mdview.Formatter
	Watcher     *ConfigWatcher
	RootStatus  *RootStatus

	override    string
	unsubscribe []func()
}

// Factory builds a State once the command line has been parsed.
type Factory func(ctx context.Context) (*State, error)

// NewState loads the config from the user's home directory and wires every
// component against the active catalog, or catalogOverride when set. Without
// an override the --catalog flag and MDVIEW_CATALOG are consulted.
func NewState(ctx context.Context, catalogOverride string) (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	if catalogOverride == "" {
		catalogOverride = viper.GetString("catalog")
	}

	return New(ctx, home, cfg, catalogOverride)
}

// New wires the components for cfg. Nothing is subscribed to the location
// until Start.
func New(ctx context.Context, home string, cfg *config.Config, catalogOverride string) (*State, error) {
	if catalogOverride != "" && catalogOverride != cfg.CurrentCatalog {
		if err := cfg.ActivateCatalog(catalogOverride); err != nil {
			return nil, err
		}
	}

	eff, err := cfg.Effective()
	if err != nil {
		return nil, err
	}
	if err := eff.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %q: %w", cfg.CurrentCatalog, err)
	}

	logPath := eff.Log.File
	if logPath == "" {
		logPath = config.GetLogPath(home)
	}
	logger, err := logging.New(logPath, eff.Log.Level)
	if err != nil {
		return nil, err
	}
	log := logger.With("catalog", cfg.CurrentCatalog)

	client := catalog.NewClient(eff.BaseURL, eff.SearchPath, httpClient(eff), log)
	loc := location.NewRouter(eff.AddressBase)
	l := loop.New(ctx, 0)

	renderer := display.NewRenderer(eff.Formatter.Style, eff.Formatter.CacheSize)
	doc := display.NewDocument(renderer)
	doc.Mount(constants.DetailTarget, defaultWidth)

	mgr := mdview.NewManager(loc, log)
	lifecycle := mdview.NewLifecycle(mgr, loc, client, l, log)
	formatter := mdview.NewFormatter(loc, client, doc, l, eff.Formatter.URL, log)
	formatter.SetAppend(eff.Formatter.Append)

	s := &State{
		Config:      cfg,
		Catalog:     eff,
		CatalogName: cfg.CurrentCatalog,
		Home:        home,
		Logger:      logger,
		Client:      client,
		Location:    loc,
		Loop:        l,
		Renderer:    renderer,
		Document:    doc,
		Manager:     mgr,
		Lifecycle:   lifecycle,
		Formatter:   formatter,
		RootStatus:  &RootStatus{},
		override:    catalogOverride,
	}
	s.OnError(func(err error) {
		log.Error("view state", "error", err)
	})

	return s, nil
}

// Start subscribes the lifecycle and the formatter to location changes.
func (s *State) Start() {
	s.unsubscribe = append(s.unsubscribe,
		s.Lifecycle.Init(),
		s.Formatter.Init(constants.DetailTarget),
	)
}

// Watch starts watching the config file for changes.
func (s *State) Watch() error {
	if s.Watcher != nil {
		return nil
	}
	path := config.GetConfigPath(s.Home)
	w, err := NewConfigWatcher(path)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	w.OnChange(func(path string) {
		s.Logger.Debug("config file changed", "path", path)
	})
	w.OnClose(func() {
		s.Logger.Info("config watcher stopped", "path", path)
	})
	s.Watcher = w
	return nil
}

// OnError routes lookup and fragment failures to fn.
func (s *State) OnError(fn func(error)) {
	s.Lifecycle.OnError(fn)
	s.Formatter.OnError(fn)
}

// Reload re-reads the config file and applies the endpoints of the active
// catalog. It must run on the loop goroutine.
func (s *State) Reload() error {
	cfg, err := config.Load(s.Home)
	if err != nil {
		return err
	}
	name := s.CatalogName
	if s.override != "" {
		name = s.override
	}
	if err := cfg.ActivateCatalog(name); err != nil {
		return err
	}
	eff, err := cfg.Effective()
	if err != nil {
		return err
	}
	if err := eff.Validate(); err != nil {
		return fmt.Errorf("catalog %q: %w", name, err)
	}

	s.Client.SetEndpoint(eff.BaseURL, eff.SearchPath)
	s.Formatter.SetBaseURL(eff.Formatter.URL)
	s.Formatter.SetAppend(eff.Formatter.Append)
	s.Config = cfg
	s.Catalog = eff
	s.CatalogName = cfg.CurrentCatalog

	s.Logger.Info("config reloaded",
		"catalog", s.CatalogName,
		"base_url", eff.BaseURL,
		"formatter_url", eff.Formatter.URL,
	)
	return nil
}

func httpClient(c *config.Catalog) *http.Client {
	if c.HTTP.Timeout <= 0 {
		return nil
	}
	return &http.Client{Timeout: c.HTTP.Timeout}
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

// LoadConfig makes sure a config file exists and loads it. MDVIEW_*
// environment variables override the active catalog's settings.
func LoadConfig(home string) (*config.Config, error) {
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := config.EnsureConfigExists(home)
	if err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Close unsubscribes components, cancels in-flight work and releases the
// watcher and log file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	for i := len(s.unsubscribe) - 1; i >= 0; i-- {
		s.unsubscribe[i]()
	}
	s.unsubscribe = nil

	if s.Loop != nil {
		s.Loop.Close()
	}

	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Watcher = nil
	}
	if s.Logger != nil {
		if err := s.Logger.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
