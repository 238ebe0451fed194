// Package paths resolves where the app keeps its per-user state.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/appshell/internal/config"
)

// Layout is the set of locations under one user-data directory.
type Layout struct {
	UserData string
}

// Resolve picks the user-data directory. An override wins; otherwise it is
// <appData>/<name>, or <appData>/<name>-<profile> when a storage profile is
// set so profiles never share state.
func Resolve(appName, profile, override string) (Layout, error) {
	if override != "" {
		return Layout{UserData: filepath.Clean(override)}, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return Layout{}, fmt.Errorf("locate app data directory: %w", err)
	}
	return Layout{UserData: filepath.Join(base, DirName(appName, profile))}, nil
}

func DirName(appName, profile string) string {
	if profile == "" {
		return appName
	}
	return appName + "-" + profile
}

func (l Layout) ConfigFile() string { return filepath.Join(l.UserData, config.FileName) }

func (l Layout) WebViewData() string { return filepath.Join(l.UserData, "webview") }

func (l Layout) LogsDir() string { return filepath.Join(l.UserData, "logs") }
