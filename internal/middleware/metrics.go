package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Sanket3107/Rupaya/internal/metrics"
)

// Metrics records request latency labelled by the matched route template,
// so path ids do not explode label cardinality. Install it with
// Router.Use so the route is known.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tmpl, err := cur.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			m.ObserveRequest(r.Method, route, rec.status, time.Since(start))
		})
	}
}
