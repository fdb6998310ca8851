package middleware

import (
	"net/http"
	"net/url"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/threadline-backend/pkg/config"
)

// CORS lets the storefront call the public API from the browser. Configured
// origins win. Without any, development admits every localhost port and
// other environments send no CORS headers at all, so browsers refuse
// cross-origin calls.
func CORS(app config.AppConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, idempotentReplayHeader, "Retry-After"},
		MaxAge:         300,
	}
	switch {
	case len(app.CORSOrigins) > 0:
		opts.AllowedOrigins = app.CORSOrigins
	case app.IsDev():
		opts.AllowOriginFunc = func(_ *http.Request, origin string) bool { return isLocalhost(origin) }
	default:
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(opts)
}

func isLocalhost(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1":
		return true
	}
	return false
}
