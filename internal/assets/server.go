// Package assets serves the UI bundle over loopback HTTP. Its origin is the
// app origin: the only one the navigation policy lets the window load in place.
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// DefaultAddr binds an ephemeral loopback port.
const DefaultAddr = "127.0.0.1:0"

const maxPayload = 1 << 20

// Invoker dispatches a channel request. The ipc router satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, channel string, payload json.RawMessage) (any, error)
}

type Server struct {
	echo   *echo.Echo
	log    zerolog.Logger
	ipc    Invoker
	origin string
}

// NewServer serves root at /. When ipc is not nil, POST /ipc/:channel is
// routed to it, which lets a plain browser drive the same channels.
func NewServer(root string, ipc Invoker, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo: e,
		log:  log.With().Str("component", "assets").Logger(),
		ipc:  ipc,
	}

	e.Use(middleware.Recover())
	e.Use(s.requestLogger())
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  root,
		Index: "index.html",
	}))

	if ipc != nil {
		e.POST("/ipc/:channel", s.handleIPC)
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr and serves in the background. It returns the origin,
// e.g. http://127.0.0.1:53211.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", addr, err)
	}
	s.echo.Listener = ln
	s.origin = "http://" + ln.Addr().String()

	go func() {
		if err := s.echo.Start(ln.Addr().String()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("asset server stopped")
		}
	}()

	s.log.Info().Str("origin", s.origin).Msg("serving assets")
	return s.origin, nil
}

func (s *Server) Origin() string { return s.origin }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleIPC(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPayload))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	result, err := s.ipc.Invoke(c.Request().Context(), c.Param("channel"), json.RawMessage(body))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
