// Package app wires together all adapters and domain logic.
// It provides lifecycle management for glossa: create, load, serve, stop.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/corey/glossa/internal/adapters/bbolt"
	"github.com/corey/glossa/internal/adapters/dictfile"
	fsw "github.com/corey/glossa/internal/adapters/fsnotify"
	"github.com/corey/glossa/internal/adapters/htmlclean"
	"github.com/corey/glossa/internal/adapters/markdown"
	"github.com/corey/glossa/internal/adapters/web"
	"github.com/corey/glossa/internal/config"
	"github.com/corey/glossa/internal/domain/annotate"
	"github.com/corey/glossa/internal/domain/splice"
	"github.com/corey/glossa/internal/ports"
)

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Config      *config.Config

	Store     *bbolt.Store // nil when dictionaries come from files
	Engine    *annotate.Engine
	Watcher   *fsw.Watcher // nil until Start with dictionary.watch
	WebServer *web.Server

	source  ports.RecordSource
	files   dictfile.Source
	logger  *slog.Logger
	mu      sync.Mutex // guards Watcher and WebServer lifecycle
	started time.Time
}

// Options holds initialization parameters for the App.
type Options struct {
	ProjectRoot string
	Config      *config.Config
	Logger      *slog.Logger // nil uses slog.Default()
}

// New creates an App with all dependencies wired and the dictionaries
// loaded. Does not start the HTTP server or the watcher.
func New(opts Options) (*App, error) {
	if opts.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	paths := NewPaths(opts.ProjectRoot)

	a := &App{
		ProjectRoot: opts.ProjectRoot,
		Paths:       paths,
		Config:      cfg,
		logger:      logger,
	}

	if cfg.Dictionary.FromFiles() {
		a.files = dictfile.Source{Phrases: cfg.Dictionary.PhrasesPath, Words: cfg.Dictionary.WordsPath}
		a.source = a.files
	} else {
		store, err := OpenStore(paths, cfg)
		if err != nil {
			return nil, err
		}
		a.Store = store
		a.source = store
	}

	a.Engine = annotate.NewEngine(EngineOptions(cfg), logger)
	if _, err := a.Engine.Reload(a.source); err != nil {
		a.Close()
		return nil, fmt.Errorf("load dictionaries: %w", err)
	}

	a.WebServer = web.NewServer(a.Engine, web.Options{
		PortFile:        paths.PortFile,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)
	return a, nil
}

// OpenStore opens the dictionary database named by the config, defaulting
// to .glossa/glossa.db.
func OpenStore(paths *Paths, cfg *config.Config) (*bbolt.Store, error) {
	dbPath := cfg.Dictionary.DBPath
	if dbPath == "" {
		if err := paths.EnsureDirs(); err != nil {
			return nil, fmt.Errorf("create %s: %w", paths.Root, err)
		}
		dbPath = paths.DB
	}
	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// EngineOptions maps the annotate config section onto engine options.
func EngineOptions(cfg *config.Config) annotate.Options {
	opts := annotate.Options{
		Marker:    splice.HTMLMarker{ClassPrefix: cfg.Annotate.ClassPrefix},
		Splice:    splice.Options{Nested: cfg.Annotate.NestedSenses},
		MaxInput:  cfg.Annotate.MaxInputBytes,
		Converter: markdown.New(),
	}
	if cfg.Annotate.Sanitize {
		opts.Sanitizer = htmlclean.Sanitizer{}
	}
	return opts
}

// Reload rebuilds the engine snapshot from the configured source.
func (a *App) Reload() (*annotate.Snapshot, error) {
	return a.Engine.Reload(a.source)
}

// onDictionaryChanged is the watcher callback. A failed reload keeps the
// previous snapshot serving.
func (a *App) onDictionaryChanged(path string) {
	a.logger.Info("dictionary changed", slog.String("path", path))
	if _, err := a.Reload(); err != nil {
		a.logger.Error("reload failed, keeping previous dictionary", slog.String("path", path), slog.Any("error", err))
	}
}

// Start begins serving (HTTP server + dictionary watcher).
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.started = time.Now()
	if err := a.Paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", a.Paths.Root, err)
	}

	port := a.Config.Server.Port
	if port == 0 {
		port = web.DefaultPort(a.ProjectRoot)
	}
	if err := a.WebServer.Start(a.Config.Server.Host, port); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	if err := os.WriteFile(a.Paths.PIDFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
		a.logger.Warn("write pid file", slog.Any("error", err))
	}

	// File watcher is non-fatal if setup fails
	if a.Config.Dictionary.Watch && len(a.files.Paths()) > 0 {
		w, err := fsw.NewWatcher(a.Config.Dictionary.WatchSettle)
		if err == nil {
			err = w.Watch(a.files.Paths(), a.onDictionaryChanged)
			if err != nil {
				w.Stop()
			}
		}
		if err != nil {
			a.logger.Warn("dictionary watcher unavailable", slog.Any("error", err))
		} else {
			a.Watcher = w
		}
	}
	return nil
}

// Stop gracefully shuts down all services and closes the store.
func (a *App) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.Watcher != nil {
		errs = append(errs, a.Watcher.Stop())
		a.Watcher = nil
	}
	a.WebServer.Stop()
	a.Paths.CleanEphemeral()
	errs = append(errs, a.Close())
	return errors.Join(errs...)
}

// Close releases the store without touching the HTTP server. Idempotent.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

// Uptime reports how long the app has been serving.
func (a *App) Uptime() time.Duration {
	if a.started.IsZero() {
		return 0
	}
	return time.Since(a.started)
}
