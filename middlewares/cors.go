package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/oncallkit/notifydesk/internal"
)

const DefaultCORSMaxAge = 12 * time.Hour

// CORSConfig configures CORS. The defaults allow any origin to call the
// JSON API with the headers the GraphQL client sends.
type CORSConfig struct {
	AllowOrigins []string
	// AllowOriginFunc replaces AllowOrigins when set.
	AllowOriginFunc  func(origin string) bool
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type CORSOption func(*CORSConfig)

func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOrigins = origins
	}
}

func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOriginFunc = fn
	}
}

func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowHeaders = headers
	}
}

func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposeHeaders = headers
	}
}

// WithAllowCredentials makes the response echo the caller's origin instead
// of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowCredentials = true
	}
}

func WithMaxAge(d time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = d
	}
}

// CORS answers preflight requests and decorates cross-origin responses.
// Requests from origins that are not allowed pass through without CORS
// headers and the browser blocks them.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := &CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Accept", "X-Request-ID"},
		MaxAge:       DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))
	wildcard := slices.Contains(cfg.AllowOrigins, "*")

	allowed := func(origin string) bool {
		if cfg.AllowOriginFunc != nil {
			return cfg.AllowOriginFunc(origin)
		}
		return wildcard || slices.Contains(cfg.AllowOrigins, origin)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" || !allowed(origin) {
				return next(c)
			}

			h := c.Response().Header()
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials || !wildcard {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
