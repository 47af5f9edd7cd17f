package middleware

import "net/http"

// NewMaxBodySizeHandler caps request bodies at limit bytes. A request that
// declares a larger Content-Length is answered with 413 before the next
// handler runs; otherwise the body is wrapped in http.MaxBytesReader so a
// handler reading past the limit gets an *http.MaxBytesError.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
