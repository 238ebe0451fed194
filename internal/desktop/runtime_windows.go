//go:build windows

package desktop

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/jchv/go-webview2"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"

	"github.com/user/appshell/internal/placement"
	"github.com/user/appshell/internal/window"
)

func init() {
	// WebView2 windows belong to the thread that created them.
	runtime.LockOSThread()
}

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
	procMonitorFromWindow   = user32.NewProc("MonitorFromWindow")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procIsZoomed            = user32.NewProc("IsZoomed")
	procIsIconic            = user32.NewProc("IsIconic")
	procShowWindow          = user32.NewProc("ShowWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procGetWindowLongPtrW   = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW   = user32.NewProc("SetWindowLongPtrW")
	procCallWindowProcW     = user32.NewProc("CallWindowProcW")
	procDefWindowProcW      = user32.NewProc("DefWindowProcW")
)

const (
	wmMove = 0x0003
	wmSize = 0x0005

	swMaximize = 3
	swRestore  = 9

	wsPopup            = 0x80000000
	wsVisible          = 0x10000000
	wsOverlappedWindow = 0x00CF0000

	swpNoSize       = 0x0001
	swpNoZOrder     = 0x0004
	swpNoActivate   = 0x0010
	swpFrameChanged = 0x0020
	swpShowWindow   = 0x0040

	monitorDefaultToNearest = 0x00000002
)

var (
	gwlpWndProc = ^uintptr(3)  // -4
	gwlStyle    = ^uintptr(15) // -16
)

type rect struct {
	Left, Top, Right, Bottom int32
}

func (r rect) toRect() placement.Rect {
	return placement.Rect{
		X:      int(r.Left),
		Y:      int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}
}

type monitorInfo struct {
	CbSize    uint32
	RcMonitor rect
	RcWork    rect
	DwFlags   uint32
}

func monitorRect(hMonitor uintptr) (rect, bool) {
	var mi monitorInfo
	mi.CbSize = uint32(unsafe.Sizeof(mi))
	ok, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&mi)))
	return mi.RcMonitor, ok != 0
}

// Callbacks are a finite resource, so both are created once.
var (
	enumMu       sync.Mutex
	enumFound    []placement.Rect
	enumCallback = windows.NewCallback(func(hMonitor, _, _, _ uintptr) uintptr {
		if r, ok := monitorRect(hMonitor); ok {
			enumFound = append(enumFound, r.toRect())
		}
		return 1
	})

	subclassMu       sync.Mutex
	subclassed       = map[uintptr]*webWindow{}
	subclassCallback = windows.NewCallback(subclassProc)
)

type Runtime struct {
	log zerolog.Logger
}

func NewRuntime(log zerolog.Logger) (*Runtime, error) {
	return &Runtime{log: log.With().Str("component", "desktop").Logger()}, nil
}

// Displays returns the bounds of every attached monitor.
func (r *Runtime) Displays() ([]placement.Rect, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumFound = nil
	ok, _, err := procEnumDisplayMonitors.Call(0, 0, enumCallback, 0)
	if ok == 0 {
		return nil, fmt.Errorf("enumerate monitors: %w", err)
	}
	found := enumFound
	enumFound = nil
	return found, nil
}

func (r *Runtime) NewWindow(spec window.Spec) (window.Window, error) {
	opts := spec.Options

	wv := webview2.NewWithOptions(webview2.WebViewOptions{
		Debug:     opts.DevTools,
		DataPath:  opts.DataPath,
		AutoFocus: true,
		WindowOptions: webview2.WindowOptions{
			Title:  opts.Title,
			Width:  uint(opts.Width),
			Height: uint(opts.Height),
			Center: opts.X == nil,
		},
	})
	if wv == nil {
		return nil, ErrWebViewUnavailable
	}

	w := &webWindow{
		wv:         wv,
		hwnd:       uintptr(wv.Window()),
		log:        r.log,
		onGeometry: spec.OnGeometryChange,
	}

	wv.SetSize(opts.MinWidth, opts.MinHeight, webview2.HintMin)
	if opts.X != nil && opts.Y != nil {
		procSetWindowPos.Call(w.hwnd, 0, uintptr(*opts.X), uintptr(*opts.Y), 0, 0,
			swpNoSize|swpNoZOrder|swpNoActivate)
	}

	for name, fn := range spec.Bindings {
		if err := wv.Bind(name, fn); err != nil {
			wv.Destroy()
			return nil, fmt.Errorf("bind %s: %w", name, err)
		}
	}
	for _, script := range spec.InitScripts {
		wv.Init(script)
	}

	w.subclass()
	wv.Navigate(spec.URL)

	return w, nil
}

type webWindow struct {
	wv         webview2.WebView
	hwnd       uintptr
	log        zerolog.Logger
	onGeometry func()
	prevProc   uintptr

	mu         sync.Mutex
	gone       bool
	fullscreen bool
	savedStyle uintptr
	savedRect  rect
}

func (w *webWindow) subclass() {
	subclassMu.Lock()
	defer subclassMu.Unlock()

	w.prevProc, _, _ = procGetWindowLongPtrW.Call(w.hwnd, gwlpWndProc)
	subclassed[w.hwnd] = w
	procSetWindowLongPtrW.Call(w.hwnd, gwlpWndProc, subclassCallback)
}

func subclassProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	subclassMu.Lock()
	w := subclassed[hwnd]
	subclassMu.Unlock()

	if w == nil {
		ret, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
		return ret
	}

	if (msg == wmSize || msg == wmMove) && w.onGeometry != nil {
		w.onGeometry()
	}

	ret, _, _ := procCallWindowProcW.Call(w.prevProc, hwnd, msg, wParam, lParam)
	return ret
}

func (w *webWindow) Bounds() (placement.Rect, error) {
	w.mu.Lock()
	gone := w.gone
	w.mu.Unlock()
	if gone {
		return placement.Rect{}, fmt.Errorf("window destroyed")
	}

	var r rect
	ok, _, err := procGetWindowRect.Call(w.hwnd, uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return placement.Rect{}, fmt.Errorf("get window rect: %w", err)
	}
	return r.toRect(), nil
}

func (w *webWindow) IsMaximized() bool {
	ret, _, _ := procIsZoomed.Call(w.hwnd)
	return ret != 0
}

func (w *webWindow) IsFullscreen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fullscreen
}

func (w *webWindow) Maximize() {
	procShowWindow.Call(w.hwnd, swMaximize)
}

// SetFullscreen swaps the window to a borderless popup covering its monitor,
// and back to the saved style and rectangle.
func (w *webWindow) SetFullscreen(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if on == w.fullscreen {
		return
	}

	if on {
		hMonitor, _, _ := procMonitorFromWindow.Call(w.hwnd, monitorDefaultToNearest)
		mon, ok := monitorRect(hMonitor)
		if !ok {
			w.log.Warn().Msg("no monitor for fullscreen")
			return
		}
		w.savedStyle, _, _ = procGetWindowLongPtrW.Call(w.hwnd, gwlStyle)
		procGetWindowRect.Call(w.hwnd, uintptr(unsafe.Pointer(&w.savedRect)))

		procSetWindowLongPtrW.Call(w.hwnd, gwlStyle, uintptr(wsPopup|wsVisible))
		b := mon.toRect()
		procSetWindowPos.Call(w.hwnd, 0,
			uintptr(b.X), uintptr(b.Y), uintptr(b.Width), uintptr(b.Height),
			swpShowWindow|swpFrameChanged)
		w.fullscreen = true
		return
	}

	style := w.savedStyle
	if style == 0 {
		style = wsOverlappedWindow | wsVisible
	}
	procSetWindowLongPtrW.Call(w.hwnd, gwlStyle, style)
	b := w.savedRect.toRect()
	procSetWindowPos.Call(w.hwnd, 0,
		uintptr(b.X), uintptr(b.Y), uintptr(b.Width), uintptr(b.Height),
		swpShowWindow|swpFrameChanged|swpNoZOrder)
	w.fullscreen = false
}

func (w *webWindow) Focus() {
	w.wv.Dispatch(func() {
		if iconic, _, _ := procIsIconic.Call(w.hwnd); iconic != 0 {
			procShowWindow.Call(w.hwnd, swRestore)
		}
		procSetForegroundWindow.Call(w.hwnd)
	})
}

func (w *webWindow) Run() {
	w.wv.Run()

	w.mu.Lock()
	w.gone = true
	w.mu.Unlock()

	subclassMu.Lock()
	delete(subclassed, w.hwnd)
	subclassMu.Unlock()

	w.wv.Destroy()
}

func (w *webWindow) Close() {
	w.wv.Dispatch(w.wv.Terminate)
}
