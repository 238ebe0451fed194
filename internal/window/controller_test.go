package window

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/appshell/internal/config"
	"github.com/user/appshell/internal/ipc"
	"github.com/user/appshell/internal/navigation"
	"github.com/user/appshell/internal/placement"
)

type fakeWindow struct {
	spec Spec

	mu         sync.Mutex
	bounds     placement.Rect
	boundsErr  error
	maximized  bool
	fullscreen bool
	focused    int

	closeOnce sync.Once
	closed    chan struct{}
}

func (w *fakeWindow) Bounds() (placement.Rect, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds, w.boundsErr
}

func (w *fakeWindow) IsMaximized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maximized
}

func (w *fakeWindow) IsFullscreen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fullscreen
}

func (w *fakeWindow) Maximize() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maximized = true
}

func (w *fakeWindow) SetFullscreen(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fullscreen = on
}

func (w *fakeWindow) Focus() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focused++
}

func (w *fakeWindow) focusCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

func (w *fakeWindow) Run()   { <-w.closed }
func (w *fakeWindow) Close() { w.closeOnce.Do(func() { close(w.closed) }) }

type fakeRuntime struct {
	displays []placement.Rect
	err      error
	created  chan *fakeWindow
}

func newFakeRuntime(displays ...placement.Rect) *fakeRuntime {
	return &fakeRuntime{displays: displays, created: make(chan *fakeWindow, 8)}
}

func (r *fakeRuntime) Displays() ([]placement.Rect, error) { return r.displays, nil }

func (r *fakeRuntime) NewWindow(spec Spec) (Window, error) {
	if r.err != nil {
		return nil, r.err
	}
	w := &fakeWindow{
		spec:   spec,
		bounds: placement.Rect{Width: spec.Options.Width, Height: spec.Options.Height},
		closed: make(chan struct{}),
	}
	r.created <- w
	return w, nil
}

func (r *fakeRuntime) next(t *testing.T) *fakeWindow {
	t.Helper()
	select {
	case w := <-r.created:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("no window created")
		return nil
	}
}

type nopOpener struct{}

func (nopOpener) Open(string) error { return nil }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

type brokenStore struct {
	*config.Store
}

func (brokenStore) SetWindowConfig(config.WindowConfig) error { return errors.New("disk full") }

var primary = placement.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func newStore(t *testing.T, defaults string, opts ...config.Option) *config.Store {
	t.Helper()
	store := config.NewStore(afero.NewMemMapFs(), "/data/config", []byte(defaults), opts...)
	store.Load()
	return store
}

type harness struct {
	ctrl     *Controller
	rt       *fakeRuntime
	clock    *clockwork.FakeClock
	notifier *recordingNotifier
}

func newHarness(t *testing.T, store Store, keepAlive bool) *harness {
	t.Helper()
	h := &harness{
		rt:       newFakeRuntime(primary),
		clock:    clockwork.NewFakeClock(),
		notifier: &recordingNotifier{},
	}
	guard := navigation.NewGuard(navigation.Policy{AppOrigin: "http://127.0.0.1:8000"}, nopOpener{}, zerolog.Nop())
	h.ctrl = New(h.rt, store, ipc.NewRouter(zerolog.Nop()), guard, h.notifier, zerolog.Nop(), Options{
		AppName:   "App",
		StartURL:  "http://127.0.0.1:8000/index.html",
		DataPath:  "/data/webview",
		KeepAlive: keepAlive,
		Clock:     h.clock,
	})
	return h
}

func TestOpen_UsesStoredGeometry(t *testing.T) {
	store := newStore(t, `{"mainWindow":{"width":1024,"height":768,"x":100,"y":50,"autoHideMenuBar":true},"debug":{"enableConsole":true}}`)
	h := newHarness(t, store, false)

	_, err := h.ctrl.Open()
	require.NoError(t, err)
	w := h.rt.next(t)

	opts := w.spec.Options
	assert.Equal(t, "App", opts.Title)
	assert.Equal(t, 1024, opts.Width)
	assert.Equal(t, 768, opts.Height)
	require.NotNil(t, opts.X)
	require.NotNil(t, opts.Y)
	assert.Equal(t, 100, *opts.X)
	assert.Equal(t, 50, *opts.Y)
	assert.True(t, opts.DevTools)
	assert.Equal(t, "/data/webview", opts.DataPath)
	assert.Equal(t, "http://127.0.0.1:8000/index.html", w.spec.URL)
	assert.Equal(t, Open, h.ctrl.State())
}

func TestOpen_DropsOffscreenPosition(t *testing.T) {
	store := newStore(t, `{"mainWindow":{"width":1024,"height":768,"x":-5000,"y":50}}`)
	h := newHarness(t, store, false)

	_, err := h.ctrl.Open()
	require.NoError(t, err)
	w := h.rt.next(t)

	assert.Nil(t, w.spec.Options.X)
	assert.Nil(t, w.spec.Options.Y)
	assert.Equal(t, 1024, w.spec.Options.Width)
}

func TestOpen_ReturnsExistingWindow(t *testing.T) {
	h := newHarness(t, newStore(t, `{}`), false)

	first, err := h.ctrl.Open()
	require.NoError(t, err)
	second, err := h.ctrl.Open()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, h.rt.created, 1)
}

func TestOpen_RuntimeError(t *testing.T) {
	h := newHarness(t, newStore(t, `{}`), false)
	h.rt.err = errors.New("no webview")

	_, err := h.ctrl.Open()

	assert.ErrorContains(t, err, "no webview")
	assert.Equal(t, Closed, h.ctrl.State())
}

func TestOpen_RestoresMaximizedAndFullscreen(t *testing.T) {
	store := newStore(t, `{"mainWindow":{"maximized":true,"fullscreen":true}}`)
	h := newHarness(t, store, false)

	_, err := h.ctrl.Open()
	require.NoError(t, err)
	w := h.rt.next(t)

	assert.True(t, w.IsMaximized())
	assert.True(t, w.IsFullscreen())
}

func TestOpen_InjectsBridgeAndNavigation(t *testing.T) {
	h := newHarness(t, newStore(t, `{}`), false)

	_, err := h.ctrl.Open()
	require.NoError(t, err)
	w := h.rt.next(t)

	assert.Len(t, w.spec.InitScripts, 2)
	assert.Contains(t, w.spec.Bindings, ipc.BindingName)
	assert.Contains(t, w.spec.Bindings, navigation.BindingName)
	assert.NotNil(t, w.spec.OnGeometryChange)
}

func TestTitle_IncludesStorageProfile(t *testing.T) {
	store := newStore(t, `{}`, config.WithStorageProfile("beta"))
	h := newHarness(t, store, false)

	assert.Equal(t, "App-beta", h.ctrl.Title())
}

func TestCapture_IsDebounced(t *testing.T) {
	store := newStore(t, `{}`)
	h := newHarness(t, store, false)

	_, err := h.ctrl.Open()
	require.NoError(t, err)
	w := h.rt.next(t)

	w.mu.Lock()
	w.bounds = placement.Rect{X: 10, Y: 20, Width: 900, Height: 700}
	w.mu.Unlock()

	for i := 0; i < 5; i++ {
		w.spec.OnGeometryChange()
		h.clock.Advance(100 * time.Millisecond)
	}
	h.clock.Advance(CaptureDelay - 101*time.Millisecond)
	assert.Nil(t, store.Config().MainWindow)

	h.clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return store.Config().MainWindow != nil }, time.Second, 5*time.Millisecond)

	saved := store.Config().MainWindow
	assert.Equal(t, 900, *saved.Width)
	assert.Equal(t, 700, *saved.Height)
	assert.Equal(t, 10, *saved.X)
	assert.Equal(t, 20, *saved.Y)
	assert.False(t, *saved.Maximized)
	assert.False(t, *saved.Fullscreen)
	assert.False(t, *saved.AutoHideMenuBar)
}

func TestCapture_SkippedWhenBoundsUnavailable(t *testing.T) {
	store := newStore(t, `{}`)
	h := newHarness(t, store, false)

	_, err := h.ctrl.Open()
	require.NoError(t, err)
	w := h.rt.next(t)

	w.mu.Lock()
	w.boundsErr = errors.New("window destroyed")
	w.mu.Unlock()

	w.spec.OnGeometryChange()
	h.clock.Advance(CaptureDelay)

	assert.Never(t, func() bool { return store.Config().MainWindow != nil }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestCapture_WriteFailureNotifies(t *testing.T) {
	store := brokenStore{newStore(t, `{}`)}
	h := newHarness(t, store, false)

	_, err := h.ctrl.Open()
	require.NoError(t, err)
	w := h.rt.next(t)

	w.spec.OnGeometryChange()
	h.clock.Advance(CaptureDelay)

	require.Eventually(t, func() bool { return h.notifier.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, h.notifier.messages[0], "disk full")
}

func TestServe_ReturnsWhenWindowCloses(t *testing.T) {
	h := newHarness(t, newStore(t, `{}`), false)

	errc := make(chan error, 1)
	go func() { errc <- h.ctrl.Serve(context.Background(), nil) }()

	w := h.rt.next(t)
	w.Close()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.Equal(t, Closed, h.ctrl.State())
}

func TestServe_CloseCancelsPendingCapture(t *testing.T) {
	store := newStore(t, `{}`)
	h := newHarness(t, store, false)

	errc := make(chan error, 1)
	go func() { errc <- h.ctrl.Serve(context.Background(), nil) }()

	w := h.rt.next(t)
	w.spec.OnGeometryChange()
	w.Close()
	require.NoError(t, <-errc)

	h.clock.Advance(CaptureDelay)
	assert.Never(t, func() bool { return store.Config().MainWindow != nil }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestServe_KeepAliveReopensOnActivation(t *testing.T) {
	h := newHarness(t, newStore(t, `{}`), true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	activations := make(chan struct{})

	errc := make(chan error, 1)
	go func() { errc <- h.ctrl.Serve(ctx, activations) }()

	first := h.rt.next(t)
	activations <- struct{}{}
	require.Eventually(t, func() bool { return first.focusCount() == 1 }, time.Second, 5*time.Millisecond)

	first.Close()
	require.Eventually(t, func() bool { return h.ctrl.State() == Closed }, time.Second, 5*time.Millisecond)

	activations <- struct{}{}
	second := h.rt.next(t)
	assert.NotSame(t, first, second)

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_CancelClosesWindow(t *testing.T) {
	h := newHarness(t, newStore(t, `{}`), true)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- h.ctrl.Serve(ctx, nil) }()

	h.rt.next(t)
	cancel()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "closed", Closed.String())
}
