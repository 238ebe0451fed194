package assets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/appshell/internal/ipc"
)

func writeUI(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>app</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("console.log(1)"), 0o644))
	return root
}

func newRouter() *ipc.Router {
	r := ipc.NewRouter(zerolog.Nop())
	r.Handle("echo", func(_ context.Context, payload json.RawMessage) (any, error) {
		return payload, nil
	})
	r.Handle("fails", func(context.Context, json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	})
	return r
}

func serve(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStatic(t *testing.T) {
	srv := NewServer(writeUI(t), nil, zerolog.Nop())

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"index at root", "/", http.StatusOK, "<h1>app</h1>"},
		{"index by name", "/index.html", http.StatusOK, "<h1>app</h1>"},
		{"asset", "/app.js", http.StatusOK, "console.log(1)"},
		{"missing", "/nope.css", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, srv, http.MethodGet, tt.target, "")

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestStatic_RejectsTraversal(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "ui")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("secret"), 0o644))
	srv := NewServer(root, nil, zerolog.Nop())

	rec := serve(t, srv, http.MethodGet, "/..%2fsecret.txt", "")

	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestIPC_RouteDisabledWithoutInvoker(t *testing.T) {
	srv := NewServer(writeUI(t), nil, zerolog.Nop())

	rec := serve(t, srv, http.MethodPost, "/ipc/echo", `{}`)

	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestIPC(t *testing.T) {
	srv := NewServer(writeUI(t), newRouter(), zerolog.Nop())

	t.Run("result", func(t *testing.T) {
		rec := serve(t, srv, http.MethodPost, "/ipc/echo", `{"a":1}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"a":1}`, rec.Body.String())
	})

	t.Run("unknown channel", func(t *testing.T) {
		rec := serve(t, srv, http.MethodPost, "/ipc/missing", `{}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `null`, rec.Body.String())
	})

	t.Run("handler error", func(t *testing.T) {
		rec := serve(t, srv, http.MethodPost, "/ipc/fails", `{}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "boom")
	})
}

func TestStartAndShutdown(t *testing.T) {
	srv := NewServer(writeUI(t), nil, zerolog.Nop())

	origin, err := srv.Start(DefaultAddr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(origin, "http://127.0.0.1:"))
	assert.Equal(t, origin, srv.Origin())

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(origin + "/index.html")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<h1>app</h1>", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
