package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"tunestudio/pkg/logger"
	"tunestudio/pkg/phone"
)

const HeaderPhoneNumber = "X-Phone-Number"

type PhoneExtractor func(r *http.Request) string

// PhoneRateLimiter is a sliding-window limiter keyed by the display form of a
// phone number, so "8 929 123-45-67" and "+79291234567" share a budget.
type PhoneRateLimiter struct {
	mu             sync.Mutex
	requests       map[string][]time.Time
	limit          int
	window         time.Duration
	phoneExtractor PhoneExtractor
	log            *logger.Logger
	now            func() time.Time
	stopCh         chan struct{}
	stopOnce       sync.Once
}

func NewPhoneRateLimiter(limit int, window time.Duration, extractor PhoneExtractor, log *logger.Logger) *PhoneRateLimiter {
	if extractor == nil {
		extractor = DefaultPhoneExtractor
	}

	limiter := &PhoneRateLimiter{
		requests:       make(map[string][]time.Time),
		limit:          limit,
		window:         window,
		phoneExtractor: extractor,
		log:            log,
		now:            time.Now,
		stopCh:         make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *PhoneRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := rl.now()
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) >= rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PhoneRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow records a hit for raw and reports whether it fits in the window. The
// second result is how long to wait when it does not.
func (rl *PhoneRateLimiter) Allow(raw string) (bool, time.Duration) {
	key := phone.Format(raw)
	if key == "" {
		return true, 0
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[key][:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, rl.window - now.Sub(valid[0])
	}

	rl.requests[key] = append(valid, now)
	return true, 0
}

func PhoneRateLimit(limiter *PhoneRateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := limiter.phoneExtractor(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			if ok, retryAfter := limiter.Allow(raw); !ok {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", requestID(r),
					"phone", phone.Format(raw),
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.5)))
				reject(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func DefaultPhoneExtractor(r *http.Request) string {
	return r.Header.Get(HeaderPhoneNumber)
}

// FormPhoneExtractor falls back to the "phone" field of a JSON body, which is
// how the public callback form submits. The body is restored for the handler.
func FormPhoneExtractor(r *http.Request) string {
	if p := DefaultPhoneExtractor(r); p != "" {
		return p
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return ""
	}

	body, err := readAndRestoreBody(r)
	if err != nil {
		return ""
	}

	var form struct {
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal(body, &form); err != nil {
		return ""
	}
	return form.Phone
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, err
}

