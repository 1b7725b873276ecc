package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"hotelmerge/internal/adapters/observability"
	"hotelmerge/internal/app"
)

// Observe records one metric sample and one access log line per request.
// Both carry the listing selector axes so filtered and unfiltered reads
// can be told apart.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			sel := selectorAxes(r)
			observability.ObserveHTTP(route, r.Method, sel, status, time.Since(start))

			q := r.URL.Query()
			l.Info().
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("route", route).
				Str("method", r.Method).
				Str("selector", sel).
				Str("ids", q.Get("ids")).
				Str("destination_ids", q.Get("destination_ids")).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("http_request")
		})
	}
}

// selectorAxes names which listing filters a request uses: none, ids,
// destinations or both.
func selectorAxes(r *http.Request) string {
	q := r.URL.Query()
	ids := len(app.ParseSelector(q.Get("ids"))) > 0
	dests := len(app.ParseSelector(q.Get("destination_ids"))) > 0
	switch {
	case ids && dests:
		return "both"
	case ids:
		return "ids"
	case dests:
		return "destinations"
	}
	return app.NoFilter
}

// routePattern falls back to the raw path for unmatched requests so 404s
// are still labelled.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
