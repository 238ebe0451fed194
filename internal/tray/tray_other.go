//go:build !windows

package tray

// Start is a no-op without a supported tray host.
func (t *Tray) Start(func()) bool {
	t.log.Debug().Msg("tray not supported on this platform")
	return false
}

func (t *Tray) Stop() {}
