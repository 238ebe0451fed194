// Package app wires the settings, build manifest, config store and IPC host
// into the desktop shell and the browser-served web target.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/user/appshell/internal/assets"
	"github.com/user/appshell/internal/buildinfo"
	"github.com/user/appshell/internal/config"
	"github.com/user/appshell/internal/desktop"
	"github.com/user/appshell/internal/ipc"
	"github.com/user/appshell/internal/logging"
	"github.com/user/appshell/internal/navigation"
	"github.com/user/appshell/internal/notify"
	"github.com/user/appshell/internal/paths"
	"github.com/user/appshell/internal/settings"
	"github.com/user/appshell/internal/tray"
	"github.com/user/appshell/internal/window"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Settings settings.Settings
	Manifest buildinfo.Manifest
	Layout   paths.Layout
	Log      zerolog.Logger
	Store    *config.Store
	Router   *ipc.Router

	cleanup shutdown
}

// New resolves the user-data directory, loads the config store and registers
// the IPC host. Logs go to out, and also to the user-data log file when the
// loaded config has debug.logs on.
func New(s settings.Settings, m buildinfo.Manifest, out io.Writer) (*App, error) {
	log, _, err := logging.New(logging.Options{Out: out, Format: s.LogFormat, Level: s.LogLevel})
	if err != nil {
		return nil, err
	}

	layout, err := paths.Resolve(m.Name, m.StorageProfile, s.UserDataDir)
	if err != nil {
		return nil, err
	}

	defaults := []byte(config.DefaultDocument)
	if len(m.DefaultConfig) > 0 {
		defaults = m.DefaultConfig
	}
	store := config.NewStore(afero.NewOsFs(), layout.ConfigFile(), defaults,
		config.WithStorageProfile(m.StorageProfile),
		config.WithLogger(log),
	)
	cfg := store.Load()

	a := &App{
		Settings: s,
		Manifest: m,
		Layout:   layout,
		Store:    store,
	}

	if cfg.Debug.Logs {
		fileLog, closeFn, err := logging.New(logging.Options{
			Out:    out,
			Format: s.LogFormat,
			Level:  s.LogLevel,
			File:   filepath.Join(layout.LogsDir(), logging.FileName),
		})
		if err != nil {
			log.Warn().Err(err).Msg("file logging unavailable")
		} else {
			log = fileLog
			a.cleanup.add("log file", func(context.Context) error { return closeFn() })
		}
	}

	a.Log = log
	a.Router = ipc.NewRouter(log)
	ipc.RegisterHost(a.Router, store)

	log.Info().
		Str("name", m.Name).
		Str("version", m.Version).
		Bool("packaged", m.Packaged).
		Str("userData", layout.UserData).
		Msg("app initialized")
	return a, nil
}

// StartURL is the dev server when one is configured for an unpackaged build,
// otherwise the bundled index page.
func (a *App) StartURL(origin string) string {
	if !a.Manifest.Packaged && a.Settings.DevServerURL != "" {
		return a.Settings.DevServerURL
	}
	return origin + "/index.html"
}

// Policy is the navigation policy for content served from origin.
func (a *App) Policy(origin string) navigation.Policy {
	return navigation.Policy{
		AppOrigin:    origin,
		DevServerURL: a.Settings.DevServerURL,
		Packaged:     a.Manifest.Packaged,
	}
}

// Run shows the desktop window and blocks until the app quits. It must be
// called from the main goroutine.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := assets.NewServer(a.Settings.UIDir, nil, a.Log)
	origin, err := srv.Start(a.Settings.Listen)
	if err != nil {
		return err
	}
	a.cleanup.add("asset server", srv.Shutdown)

	rt, err := desktop.NewRuntime(a.Log)
	if err != nil {
		return errors.Join(err, a.Close())
	}

	// without a dock or tray there is nothing to reactivate a closed window from
	keepAlive := runtime.GOOS == "darwin"
	var activations <-chan struct{}
	if a.Settings.Tray {
		t := tray.New(a.Manifest.Name, a.trayIcon(), a.Log)
		if t.Start(cancel) {
			keepAlive = true
			activations = t.Activations()
			a.cleanup.add("tray", func(context.Context) error { t.Stop(); return nil })
		}
	}

	ctrl := window.New(rt, a.Store,
		a.Router,
		navigation.NewGuard(a.Policy(origin), navigation.SystemOpener{}, a.Log),
		notify.Native(a.Manifest.Name, a.Log),
		a.Log,
		window.Options{
			AppName:   a.Manifest.Name,
			StartURL:  a.StartURL(origin),
			DataPath:  a.Layout.WebViewData(),
			DevTools:  a.Settings.DevTools(),
			KeepAlive: keepAlive,
		},
	)

	serveErr := ctrl.Serve(ctx, activations)
	return errors.Join(serveErr, a.Close())
}

// Serve runs the web target: the asset server with the IPC route, until ctx
// is done. ready, when not nil, receives the origin once listening.
func (a *App) Serve(ctx context.Context, ready func(origin string)) error {
	srv := assets.NewServer(a.Settings.UIDir, a.Router, a.Log)
	origin, err := srv.Start(a.Settings.Listen)
	if err != nil {
		return err
	}
	a.cleanup.add("asset server", srv.Shutdown)

	if ready != nil {
		ready(origin)
	}
	<-ctx.Done()
	a.Log.Info().Msg("shutting down")
	return a.Close()
}

// Close runs the registered cleanup once.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.cleanup.run(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) trayIcon() []byte {
	data, err := os.ReadFile(filepath.Join(a.Settings.UIDir, "favicon.ico"))
	if err != nil {
		a.Log.Debug().Err(err).Msg("no tray icon")
		return nil
	}
	return data
}
