package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/binu/internal/config"
	"github.com/1broseidon/binu/internal/cursor"
	"github.com/1broseidon/binu/internal/hotkeys"
	"github.com/1broseidon/binu/internal/ipc"
	"github.com/1broseidon/binu/internal/monitorwatch"
	"github.com/1broseidon/binu/internal/navigator"
	"github.com/1broseidon/binu/internal/platform"
	"github.com/1broseidon/binu/internal/runtimepath"
	"github.com/1broseidon/binu/internal/session"
	"github.com/1broseidon/binu/internal/swapper"
	"github.com/1broseidon/binu/internal/timer"
)

// slogLevel maps a log-level setting onto slog. Unknown values log at info.
func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/binu/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: binu daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the daemon in the foreground: registers the keyboard shortcuts,")
		fmt.Fprintln(os.Stderr, "serves IPC requests and keeps the monitor cache current.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	if ipc.NewClient().Ping() == nil {
		log.Println("binu daemon is already running")
		return 1
	}

	configPath := *path
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		if err != nil {
			log.Printf("Failed to resolve config path: %v", err)
			return 1
		}
	}

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	store, err := config.NewStore(configPath, logger)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := store.Current()
	level.Set(slogLevel(cfg.LogLevel))
	log.Printf("Configuration loaded from %s (move-cursor: %v, animate-cursor: %v, duration: %dms, update-focus: %v)",
		configPath, cfg.MoveCursor, cfg.AnimateCursor, cfg.AnimateCursorDuration, cfg.UpdateFocus)

	env, err := session.Apply(cfg.Display)
	if err != nil {
		log.Printf("Failed to find an X display: %v", err)
		return 1
	}
	if env.Wayland() {
		log.Printf("Warning: Wayland session detected; only X11 (XWayland) windows can be navigated")
	}

	backend, err := platform.NewLinuxBackendFromDisplay(env.Display)
	if err != nil {
		log.Printf("Failed to connect to display %s: %v", env.Display, err)
		return 1
	}
	defer backend.Disconnect()
	log.Printf("Connected to display %s (from %s)", env.Display, env.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tm := timer.New()
	tm.Enable()

	sizer := cursor.GSettingsSizer{}
	size, err := cursor.CaptureSize(ctx, sizer, cfg.CursorSizeFallback)
	if err != nil {
		log.Printf("Warning: could not read cursor size, using %d: %v", size.Original(), err)
	}

	animator := cursor.NewAnimator(backend, sizer, size, tm, logger)
	nav := navigator.New(backend, store, animator, logger)
	swp := swapper.New(backend, store, logger)
	dispatcher := hotkeys.NewDispatcher(nav, swp, logger)

	handler, err := hotkeys.NewHandler(backend, logger)
	if err != nil {
		log.Printf("Failed to set up keyboard shortcuts: %v", err)
		return 1
	}
	// Shortcut actions run under the timer's context, so disabling the
	// timer at shutdown cancels every running session.
	actionCtx := tm.Context()
	bound := handler.Bind(actionCtx, cfg, dispatcher)
	log.Printf("%d keyboard shortcuts registered", bound)

	cachePath, err := runtimepath.MonitorCachePath()
	if err != nil {
		log.Printf("Failed to resolve monitor cache path: %v", err)
		return 1
	}
	watcher := monitorwatch.NewWatcher(monitorwatch.WatcherConfig{
		Interval: cfg.PollInterval(),
		Path:     cachePath,
		Logger:   logger,
	}, backend)

	store.OnChange(func(c *config.Config) {
		level.Set(slogLevel(c.LogLevel))
		watcher.SetInterval(c.PollInterval())
		n := handler.Rebind(actionCtx, c, dispatcher)
		logger.Info("keyboard shortcuts rebound", "count", n)
	})

	ipcServer, err := ipc.NewServer(ipc.Options{
		Navigator: nav,
		Swapper:   swp,
		Settings:  store,
		Displays:  backend,
		Monitors:  watcher,
		Shortcuts: handler.Registered,
		Logger:    logger,
	})
	if err != nil {
		log.Printf("Failed to create IPC server: %v", err)
		return 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := store.Watch(gctx); err != nil {
			logger.Warn("config file watching disabled", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		return ipcServer.Serve(gctx)
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				log.Println("Received SIGHUP, reloading config...")
				_ = store.Reload()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down binu daemon...")
		// Abort pending animation waits before the shortcuts go away.
		if n := tm.Pending(); n > 0 {
			logger.Debug("aborting pending waits", "count", n)
		}
		tm.Disable()
		handler.UnregisterAll()
		backend.Quit()
		return nil
	})

	log.Println("binu daemon started successfully")
	log.Println("Entering event loop...")
	backend.EventLoop()

	// The event loop also ends when the X connection drops.
	stop()
	err = g.Wait()
	dispatcher.Wait()
	if err != nil {
		log.Printf("binu daemon stopped: %v", err)
		return 1
	}
	log.Println("binu daemon stopped")
	return 0
}
