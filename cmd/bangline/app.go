package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dshills/bangline/internal/config"
	"github.com/dshills/bangline/internal/config/watcher"
	"github.com/dshills/bangline/internal/logging"
	"github.com/dshills/bangline/internal/session"
)

// App is the state shared by every command.
type App struct {
	ctx        context.Context
	cli        *CLI
	configPath string
	cfg        *config.Config

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	log    *logging.Logger
}

func newApp(ctx context.Context, cli *CLI, in io.Reader, out, errOut io.Writer) (*App, error) {
	a := &App{
		ctx:        ctx,
		cli:        cli,
		configPath: cli.Config,
		in:         in,
		out:        out,
		errOut:     errOut,
	}
	if a.configPath == "" {
		a.configPath = config.DefaultConfigFile()
	}

	cfg, src, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	a.log = logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: errOut,
		Prefix: "bangline",
		JSON:   cfg.Logging.JSON,
	})
	if cli.Config != "" && !src.FileFound {
		a.log.Warn("config file %s not found, using defaults", cli.Config)
	}
	if len(src.Env) > 0 {
		a.log.Debug("settings from environment: %v", src.Env)
	}
	return a, nil
}

// loadConfig reads the configuration layers and applies the global flags
// on top.
func (a *App) loadConfig() (*config.Config, config.Source, error) {
	cfg, src, err := config.Load(a.configPath, config.NewEnvLoader())
	if err != nil {
		return nil, src, err
	}

	if a.cli.HistoryFile != "" {
		if err := cfg.Set("history.file", a.cli.HistoryFile); err != nil {
			return nil, src, err
		}
	}
	if a.cli.LogLevel != "" {
		if !logging.ValidLevel(a.cli.LogLevel) {
			return nil, src, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", a.cli.LogLevel)
		}
		if err := cfg.Set("logging.level", a.cli.LogLevel); err != nil {
			return nil, src, err
		}
	}
	return cfg, src, nil
}

func (a *App) openSession() (*session.Session, error) {
	return session.New(a.cfg, session.WithLogger(a.log))
}

// watchConfig reloads the configuration into sess whenever the file
// changes, until ctx is done.
func (a *App) watchConfig(ctx context.Context, sess *session.Session) {
	w, err := watcher.New(a.configPath, watcher.WithLogger(a.log))
	if err != nil {
		a.log.Warn("cannot watch %s: %v", a.configPath, err)
		return
	}

	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove {
			return
		}
		cfg, _, err := a.loadConfig()
		if err != nil {
			a.log.Warn("config reload failed: %v", err)
			return
		}
		if err := sess.Reconfigure(cfg); err != nil {
			a.log.Warn("config reload failed: %v", err)
			return
		}
		a.log.SetLevel(cfg.LogLevel())
		a.log.Info("reloaded %s", ev.Path)
	})

	go func() {
		if err := w.Run(ctx); err != nil {
			a.log.Debug("config watch stopped: %v", err)
		}
	}()
}
