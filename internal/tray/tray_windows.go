//go:build windows

package tray

import "github.com/energye/systray"

// Start installs the tray icon. It must run on the thread that pumps the
// window message loop, before that loop starts. It reports whether the tray
// is available.
func (t *Tray) Start(quit func()) bool {
	onReady := func() {
		if len(t.icon) > 0 {
			systray.SetIcon(t.icon)
		}
		systray.SetTitle(t.title)
		systray.SetTooltip(t.title)

		systray.SetOnDClick(func(systray.IMenu) { t.activate() })
		systray.SetOnRClick(func(menu systray.IMenu) { menu.ShowMenu() })

		systray.AddMenuItem("Show", "Show window").Click(t.activate)
		systray.AddSeparator()
		systray.AddMenuItem("Exit", "Exit application").Click(func() {
			t.log.Info().Msg("quit requested from tray")
			quit()
		})
	}

	start, end := systray.RunWithExternalLoop(onReady, func() {})
	start()
	t.end = end
	t.log.Debug().Msg("tray started")
	return true
}

func (t *Tray) Stop() {
	if t.end != nil {
		t.end()
		t.end = nil
	}
}
