package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Override(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	l, err := Resolve("Notes", "beta", dir+string(filepath.Separator))
	require.NoError(t, err)

	assert.Equal(t, dir, l.UserData)
	assert.Equal(t, filepath.Join(dir, "config"), l.ConfigFile())
	assert.Equal(t, filepath.Join(dir, "webview"), l.WebViewData())
	assert.Equal(t, filepath.Join(dir, "logs"), l.LogsDir())
}

func TestResolve_AppData(t *testing.T) {
	base, err := os.UserConfigDir()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}

	l, err := Resolve("Notes", "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Notes"), l.UserData)

	l, err = Resolve("Notes", "beta", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Notes-beta"), l.UserData)
}

func TestDirName(t *testing.T) {
	assert.Equal(t, "Notes", DirName("Notes", ""))
	assert.Equal(t, "Notes-dev", DirName("Notes", "dev"))
}
