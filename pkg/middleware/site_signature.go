package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	apperrors "tunestudio/pkg/errors"
	"tunestudio/pkg/logger"
)

const HeaderSiteSignature = "X-Site-Signature"

// SiteSignatureVerification checks the HMAC-SHA256 of the body that the
// marketing site attaches to form submissions. Requests for which match
// returns false pass through untouched.
func SiteSignatureVerification(secret string, log *logger.Logger, match func(*http.Request) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if match != nil && !match(r) {
				next.ServeHTTP(w, r)
				return
			}

			signature := extractSignature(r)
			if signature == "" {
				rejectSignature(w, log, r, "Missing "+HeaderSiteSignature+" header")
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				rejectSignature(w, log, r, "Failed to read request body")
				return
			}

			if !VerifySignature(body, signature, secret) {
				rejectSignature(w, log, r, "Invalid form signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Sign returns the hex signature the site sends for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(body []byte, receivedSignature string, secret string) bool {
	return hmac.Equal([]byte(Sign(body, secret)), []byte(strings.ToLower(receivedSignature)))
}

func extractSignature(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(HeaderSiteSignature))
	signature, _ := strings.CutPrefix(header, "sha256=")
	return signature
}

func rejectSignature(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Site form verification failed",
		"request_id", requestID(r),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)
	reject(w, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Unauthorized")
}
