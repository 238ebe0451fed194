package window

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/user/appshell/internal/config"
	"github.com/user/appshell/internal/debounce"
	"github.com/user/appshell/internal/ipc"
	"github.com/user/appshell/internal/navigation"
	"github.com/user/appshell/internal/notify"
	"github.com/user/appshell/internal/placement"
)

// CaptureDelay is the quiet period after the last move or resize before the
// geometry is written.
const CaptureDelay = 500 * time.Millisecond

// Store is the part of the config store the controller needs.
type Store interface {
	Snapshot() *config.Snapshot
	SetWindowConfig(patch config.WindowConfig) error
}

// Options configure a Controller.
type Options struct {
	AppName  string
	StartURL string
	DataPath string

	// DevTools enables the inspector regardless of debug.enableConsole.
	DevTools bool

	// KeepAlive keeps Serve running after the window closes so an
	// activation can create a new one.
	KeepAlive bool

	Clock        clockwork.Clock
	CaptureDelay time.Duration
}

type Controller struct {
	rt       Runtime
	store    Store
	router   *ipc.Router
	guard    *navigation.Guard
	notifier notify.Notifier
	log      zerolog.Logger
	opts     Options

	capture *debounce.Debouncer

	mu          sync.Mutex
	win         Window
	state       State
	autoHideBar bool
}

func New(rt Runtime, store Store, router *ipc.Router, guard *navigation.Guard, notifier notify.Notifier, log zerolog.Logger, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.CaptureDelay <= 0 {
		opts.CaptureDelay = CaptureDelay
	}

	c := &Controller{
		rt:       rt,
		store:    store,
		router:   router,
		guard:    guard,
		notifier: notifier,
		log:      log.With().Str("component", "window").Logger(),
		opts:     opts,
	}
	c.capture = debounce.New(opts.Clock, opts.CaptureDelay, c.captureGeometry)
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Title is the window title: the app name, suffixed with the storage
// profile when one is set.
func (c *Controller) Title() string {
	profile := c.store.Snapshot().Config().StorageProfile
	if profile == "" {
		return c.opts.AppName
	}
	return c.opts.AppName + "-" + profile
}

// Open creates the main window, or returns the existing one.
func (c *Controller) Open() (Window, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.win != nil {
		return c.win, nil
	}

	cfg := c.store.Snapshot().Config()

	displays, err := c.rt.Displays()
	if err != nil {
		// without displays the stored position cannot be validated and is dropped
		c.log.Warn().Err(err).Msg("failed to enumerate displays")
	}

	opts := placement.Compute(cfg.MainWindow.Geometry(), displays, placement.Options{
		Title:    c.Title(),
		DevTools: c.opts.DevTools || cfg.Debug.EnableConsole,
		DataPath: c.opts.DataPath,
	})

	win, err := c.rt.NewWindow(Spec{
		Options:     opts,
		URL:         c.opts.StartURL,
		InitScripts: []string{ipc.BridgeScript(), navigation.InterceptScript()},
		Bindings: map[string]any{
			ipc.BindingName:        c.router.Binding(),
			navigation.BindingName: c.guard.Navigate,
		},
		OnGeometryChange: c.capture.Trigger,
	})
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	if cfg.MainWindow.IsMaximized() {
		win.Maximize()
	}
	if cfg.MainWindow.IsFullscreen() {
		win.SetFullscreen(true)
	}

	c.win = win
	c.state = Open
	c.autoHideBar = opts.AutoHideMenuBar != nil && *opts.AutoHideMenuBar

	ev := c.log.Info().Int("width", opts.Width).Int("height", opts.Height)
	if opts.X != nil {
		ev = ev.Int("x", *opts.X).Int("y", *opts.Y)
	}
	ev.Str("url", c.opts.StartURL).Msg("window opened")

	return win, nil
}

// Activate focuses the open window. It reports false when there is none.
func (c *Controller) Activate() bool {
	c.mu.Lock()
	win := c.win
	c.mu.Unlock()

	if win == nil {
		return false
	}
	win.Focus()
	return true
}

// Close asks the open window to close.
func (c *Controller) Close() {
	c.mu.Lock()
	win := c.win
	c.mu.Unlock()

	if win != nil {
		win.Close()
	}
}

// Serve opens the window and blocks until the process should quit: when the
// window closes without KeepAlive, or when ctx is done. With KeepAlive a
// value on activations re-creates a closed window and focuses an open one.
func (c *Controller) Serve(ctx context.Context, activations <-chan struct{}) error {
	reopen := make(chan struct{}, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				c.Close()
				return
			case <-activations:
				if c.Activate() {
					continue
				}
				select {
				case reopen <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		win, err := c.Open()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			win.Close()
		}

		win.Run()
		c.closed(win)

		if ctx.Err() != nil || !c.opts.KeepAlive {
			return nil
		}

		c.log.Debug().Msg("window closed, waiting for activation")
		select {
		case <-ctx.Done():
			return nil
		case <-reopen:
		}
	}
}

func (c *Controller) closed(win Window) {
	c.capture.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.win == win {
		c.win = nil
		c.state = Closed
	}
	c.log.Info().Msg("window closed")
}

func (c *Controller) captureGeometry() {
	c.mu.Lock()
	win, autoHide := c.win, c.autoHideBar
	c.mu.Unlock()

	if win == nil {
		return
	}

	b, err := win.Bounds()
	if err != nil {
		c.log.Debug().Err(err).Msg("skipping geometry capture")
		return
	}

	patch := config.WindowConfig{
		AutoHideMenuBar: lo.ToPtr(autoHide),
		Maximized:       lo.ToPtr(win.IsMaximized()),
		Fullscreen:      lo.ToPtr(win.IsFullscreen()),
		Width:           lo.ToPtr(b.Width),
		Height:          lo.ToPtr(b.Height),
		X:               lo.ToPtr(b.X),
		Y:               lo.ToPtr(b.Y),
	}
	if err := c.store.SetWindowConfig(patch); err != nil {
		c.log.Error().Err(err).Msg("failed to save window geometry")
		if nerr := c.notifier.Notify(c.opts.AppName, "Could not save window settings: "+err.Error()); nerr != nil {
			c.log.Debug().Err(nerr).Msg("notification failed")
		}
		return
	}
	c.log.Debug().Interface("bounds", b).Msg("window geometry saved")
}
