// Package gate is the request-time filter in front of routing. Every inbound
// request resolves to exactly one outcome: pass-through, redirect, or a 403
// deny. Decisions are made from the request alone (path, method, headers,
// cookies) so they stay edge-evaluable without a network round-trip.
package gate

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/mssola/useragent"
)

const maxUserAgentLength = 500

// Config controls the gatekeeper's path policy.
type Config struct {
	// APIPrefix is exempt from allow-list/redirect logic but still receives
	// baseline security headers.
	APIPrefix string
	// MobileRoot is the authenticated dashboard prefix and the target of the
	// unknown-path redirect.
	MobileRoot string
	// LoginPath is the redirect target for unauthenticated dashboard access.
	LoginPath string
	// AuthPages redirect to MobileRoot when the visitor is already
	// authenticated.
	AuthPages []string
	// AllowedPrefixes is the fixed allow-list of non-API path prefixes.
	AllowedPrefixes []string
	// BypassPrefixes skip the gate entirely. Reserved for machine callers
	// (payment webhooks, ingest) that authenticate by other means and never
	// carry browser headers.
	BypassPrefixes []string
}

// DefaultConfig is the production path policy.
func DefaultConfig() Config {
	return Config{
		APIPrefix:  "/api",
		MobileRoot: "/mobile-v3",
		LoginPath:  "/login",
		AuthPages:  []string{"/login", "/register"},
		AllowedPrefixes: []string{
			"/mobile-v3",
			"/login",
			"/register",
			"/forgot-password",
			"/features",
			"/pricing",
			"/about",
			"/contact",
			"/privacy",
			"/terms",
			"/public",
			"/favicon.ico",
			"/health",
			"/metrics",
		},
		BypassPrefixes: []string{
			"/api/payments/webhook",
			"/api/ingest",
		},
	}
}

// Middleware returns the gatekeeper as Echo middleware. Rule order is
// load-bearing: the allow-list redirect fires before any authentication
// check so an unknown path never leaks whether the visitor is logged in.
func Middleware(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			// Machine endpoints are excluded from the gate wholesale.
			for _, prefix := range cfg.BypassPrefixes {
				if underPrefix(path, prefix) {
					decisions.WithLabelValues(outcomePass).Inc()
					return next(c)
				}
			}

			// Rule 1: request sanity. Missing or oversized user-agents are
			// denied outright.
			ua := req.Header.Get("User-Agent")
			if ua == "" || len(ua) > maxUserAgentLength {
				decisions.WithLabelValues(outcomeDeny).Inc()
				return c.NoContent(http.StatusForbidden)
			}

			// Rule 2: mutating requests must carry a same-origin referer.
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				if !sameOriginReferer(req) {
					decisions.WithLabelValues(outcomeDeny).Inc()
					return c.NoContent(http.StatusForbidden)
				}
			}

			// Rule 3: API paths skip the allow-list but get security headers.
			if strings.HasPrefix(path, cfg.APIPrefix) {
				h := c.Response().Header()
				h.Set("X-Content-Type-Options", "nosniff")
				h.Set("X-Frame-Options", "DENY")
				h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
				decisions.WithLabelValues(outcomePass).Inc()
				return next(c)
			}

			// Rule 4: unknown paths redirect to the dashboard root before
			// authentication is consulted.
			if !allowed(path, cfg.AllowedPrefixes) {
				decisions.WithLabelValues(outcomeRedirect).Inc()
				return c.Redirect(http.StatusFound, cfg.MobileRoot)
			}

			// Rule 5: the marker cookies are the only trust source here.
			_, authenticated := session.ReadMarker(req)

			// Rule 6: the dashboard requires the full marker.
			if !authenticated && underPrefix(path, cfg.MobileRoot) {
				logDecision(req, ua, "redirect-login")
				decisions.WithLabelValues(outcomeRedirect).Inc()
				return c.Redirect(http.StatusFound, cfg.LoginPath)
			}

			// Rule 7: authenticated visitors skip the auth pages.
			if authenticated {
				for _, page := range cfg.AuthPages {
					if path == page {
						decisions.WithLabelValues(outcomeRedirect).Inc()
						return c.Redirect(http.StatusFound, cfg.MobileRoot)
					}
				}
			}

			// Rule 8: pass through unchanged.
			decisions.WithLabelValues(outcomePass).Inc()
			return next(c)
		}
	}
}

// sameOriginReferer reports whether the request carries an absolute referer
// whose host matches the request host. The scheme is not compared: behind a
// TLS-terminating proxy r.TLS is nil while browsers send https referers, so
// a scheme check would deny every legitimate request. Any parse failure
// denies: the gate fails closed.
func sameOriginReferer(r *http.Request) bool {
	referer := r.Header.Get("Referer")
	if referer == "" {
		return false
	}

	ref, err := url.Parse(referer)
	if err != nil || !ref.IsAbs() {
		return false
	}

	return ref.Host == r.Host
}

func allowed(path string, prefixes []string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range prefixes {
		if underPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func logDecision(r *http.Request, rawUA, outcome string) {
	parsed := useragent.New(rawUA)
	name, _ := parsed.Browser()
	slog.Debug("gate decision",
		"path", r.URL.Path,
		"method", r.Method,
		"outcome", outcome,
		"browser", name,
		"mobile", parsed.Mobile(),
		"bot", parsed.Bot(),
	)
}
