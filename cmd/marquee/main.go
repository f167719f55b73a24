package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/backend"
	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/mmcdole/marquee/internal/web"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	configPath string
	open       string
	serve      bool
	addr       string
}

func main() {
	var opts options
	var showVersion bool
	flag.StringVar(&opts.configPath, "config", "", "path to config file")
	flag.StringVar(&opts.open, "open", "", `start at a location, e.g. "?view=details&id=603"`)
	flag.BoolVar(&opts.serve, "serve", false, "serve the web UI instead of the terminal UI")
	flag.StringVar(&opts.addr, "addr", "", "listen address for -serve (overrides server.addr)")
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("marquee %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	if !opts.serve && !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; use -serve for the web UI")
	}

	logger := setupLogger(cfg, opts.serve)
	slog.SetDefault(logger)
	logger.Info("starting marquee", "version", Version, "backend", cfg.Backend.URL, "serve", opts.serve)

	rc, closeCache, err := openCache(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	client, err := backend.New(cfg, rc, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	browse := service.NewBrowseService(client, logger,
		service.WithHomeLimit(cfg.UI.HomeLimit),
		service.WithSearchLimit(cfg.UI.SearchLimit),
	)

	if opts.serve {
		return serve(cfg, browse, logger)
	}

	category, ok := domain.ParseCategory(cfg.UI.HomeCategory)
	if !ok {
		logger.Warn("unknown home category, using default", "category", cfg.UI.HomeCategory)
		category = domain.DefaultCategory
	}

	model := tui.NewModel(browse, tui.Options{
		Category:  category,
		Columns:   cfg.UI.GridColumns,
		Location:  opts.open,
		Refresher: client,
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// setupLogger logs to a file while the TUI owns the terminal and to stderr
// when serving
func setupLogger(cfg *config.Config, serve bool) *slog.Logger {
	if serve {
		return log.ConsoleLogger(os.Stderr, cfg.Logging.Level)
	}
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		return log.NullLogger()
	}
	return logger
}

// openCache builds the response cache, backed by bbolt when cache.path is set
func openCache(cfg *config.Config, logger *slog.Logger) (*cache.Cache, func(), error) {
	if cfg.Cache.Path == "" {
		rc := cache.New(cfg.Cache.TTL, cache.WithLogger(logger))
		logger.Info("in-memory response cache", "ttl", rc.TTL())
		return rc, func() {}, nil
	}

	store, err := cache.OpenStore(cfg.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	rc := cache.New(cfg.Cache.TTL, cache.WithStore(store), cache.WithLogger(logger))
	logger.Info("persistent response cache", "path", cfg.Cache.Path, "ttl", rc.TTL())

	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing response cache", "error", err)
		}
	}
	return rc, closeFn, nil
}

func serve(cfg *config.Config, browse *service.BrowseService, logger *slog.Logger) error {
	srv, err := web.New(browse, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
