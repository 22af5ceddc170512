package middleware

import (
	"net/http"

	apperrors "tunestudio/pkg/errors"
)

// MaxRequestSize caps request bodies. Declared oversize bodies are refused
// up front; the rest are cut off by http.MaxBytesReader while decoding.
func MaxRequestSize(limit int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				reject(w, http.StatusRequestEntityTooLarge, apperrors.CodeInvalidInput, "Request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
