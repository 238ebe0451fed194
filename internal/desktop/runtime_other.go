//go:build !windows

package desktop

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/user/appshell/internal/placement"
	"github.com/user/appshell/internal/window"
)

type Runtime struct{}

func NewRuntime(log zerolog.Logger) (*Runtime, error) {
	log.Warn().Str("os", runtime.GOOS).Msg("no desktop runtime for this platform")
	return nil, ErrUnsupported
}

func (*Runtime) Displays() ([]placement.Rect, error) { return nil, ErrUnsupported }

func (*Runtime) NewWindow(window.Spec) (window.Window, error) { return nil, ErrUnsupported }
