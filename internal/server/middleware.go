package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/maruel/ksid"

	"callbook/internal/gitver"
	"callbook/internal/server/dto"
	"callbook/internal/server/ratelimit"
	"callbook/internal/server/reqctx"
)

// statusRecorder captures the response status code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush forwards to the underlying writer so streaming responses keep working.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLogger tags each request with a fresh ID and logs method, path,
// status and duration once the handler returns.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := ksid.NewID()
		ctx := reqctx.WithRequestID(r.Context(), id)
		ctx = reqctx.WithClientIP(ctx, reqctx.GetClientIP(r))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		slog.InfoContext(ctx, "Request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur", time.Since(start).Round(time.Millisecond),
			"ip", reqctx.ClientIP(ctx))
	})
}

// isMutating returns true for HTTP methods that modify state.
func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch || method == http.MethodDelete
}

// RateLimit rejects mutating requests from clients that exceed the write
// rate. Reads are never limited. A nil limiter disables the check.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			result := limiter.Allow(reqctx.GetClientIP(r))
			if !result.Allowed {
				retryAfter := int(result.RetryAfter.Seconds())
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				apiErr := dto.RateLimitExceeded(retryAfter)
				writeErrorResponseWithCode(w, apiErr.StatusCode(), apiErr.Code(), apiErr.Error(), apiErr.Details())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GitCommit records a data directory commit after each mutating request.
//
// It always attempts the commit regardless of handler outcome: if the handler
// wrote data before returning an error, the change is already on disk and must
// be tracked. When no files changed, Commit is a no-op. A nil repo disables
// versioning.
func GitCommit(repo *gitver.Repo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if repo == nil || !isMutating(r.Method) {
				return
			}
			ctx := r.Context()
			msg := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
			if err := repo.Commit(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to commit data changes", "err", err)
			}
		})
	}
}
