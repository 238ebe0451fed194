// Package desktop is the native runtime behind the window controller.
//
// Only Windows has an implementation, built on WebView2. Window creation and
// Run must happen on the thread that locked itself in this package's init,
// so the controller has to be served from the main goroutine.
package desktop

import "errors"

// ErrUnsupported is returned by NewRuntime on platforms without a webview host.
var ErrUnsupported = errors.New("desktop runtime not supported on this platform")

// ErrWebViewUnavailable is returned when the WebView2 runtime could not be
// started, usually because it is not installed.
var ErrWebViewUnavailable = errors.New("webview2 runtime unavailable")
