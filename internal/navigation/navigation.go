// Package navigation decides what happens when web content tries to leave
// the current page or open a new window.
package navigation

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type Decision int

const (
	// Allow lets the content navigate in place.
	Allow Decision = iota
	// OpenExternal cancels the navigation and hands the URL to the system opener.
	OpenExternal
	// Deny cancels the navigation.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case OpenExternal:
		return "open-external"
	default:
		return "deny"
	}
}

// externalSchemes are handed to the system opener; everything else that is
// not same-origin is denied.
var externalSchemes = []string{"http", "https", "mailto"}

// Policy holds the origins the content may navigate to in place.
type Policy struct {
	// AppOrigin is the origin the UI is served from.
	AppOrigin string
	// DevServerURL is the development server, honoured only when not packaged.
	DevServerURL string
	Packaged     bool
}

// Decide classifies a navigation target.
func (p Policy) Decide(raw string) Decision {
	target, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || target.Scheme == "" {
		return Deny
	}

	if p.AppOrigin != "" && sameOrigin(target, p.AppOrigin) {
		return Allow
	}
	if !p.Packaged && isDevServer(target, p.DevServerURL) {
		return Allow
	}
	if lo.Contains(externalSchemes, strings.ToLower(target.Scheme)) {
		return OpenExternal
	}
	return Deny
}

func isDevServer(target *url.URL, devServer string) bool {
	if devServer != "" && sameOrigin(target, devServer) {
		return true
	}
	return target.Hostname() == "localhost"
}

func sameOrigin(target *url.URL, origin string) bool {
	o, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(target.Scheme, o.Scheme) && strings.EqualFold(target.Host, o.Host)
}

// Opener launches a URL outside the shell.
type Opener interface {
	Open(rawURL string) error
}

// SystemOpener uses the platform's default handler.
type SystemOpener struct{}

func (SystemOpener) Open(rawURL string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	case "darwin":
		cmd = exec.Command("open", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	go cmd.Wait()
	return nil
}

// Guard applies a Policy and performs the external open.
type Guard struct {
	policy Policy
	opener Opener
	log    zerolog.Logger
}

func NewGuard(policy Policy, opener Opener, log zerolog.Logger) *Guard {
	return &Guard{
		policy: policy,
		opener: opener,
		log:    log.With().Str("component", "navigation").Logger(),
	}
}

func (g *Guard) Policy() Policy { return g.policy }

// Navigate reports whether the content may load rawURL in place. Failures of
// the external opener are logged and never returned.
func (g *Guard) Navigate(rawURL string) bool {
	decision := g.policy.Decide(rawURL)
	g.log.Debug().Str("url", rawURL).Stringer("decision", decision).Msg("navigation requested")

	switch decision {
	case Allow:
		return true
	case OpenExternal:
		if err := g.opener.Open(rawURL); err != nil {
			g.log.Warn().Err(err).Str("url", rawURL).Msg("failed to open url")
		}
	}
	return false
}
