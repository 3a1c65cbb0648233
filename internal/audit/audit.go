// Package audit records one structured log entry per request: the route,
// the caller's network details, the authenticated identity (when present)
// and the response status. Authorization middleware enriches the entry via
// Log before the response is written.
package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type auditContextKey struct{}

// Entry is the audit record for a single request. Fields are populated
// progressively as the request passes through the middleware chain.
type Entry struct {
	Method     string
	Path       string
	Query      string
	SourceAddr string
	UserAgent  string

	Authorized bool
	Subject    string
	Role       string

	Status int
	Error  string

	start time.Time
}

// Log returns the audit entry for the current request. A detached entry is
// returned when the audit middleware is not installed, so callers can set
// fields unconditionally.
func Log(ctx context.Context) *Entry {
	entry, ok := ctx.Value(auditContextKey{}).(*Entry)
	if !ok {
		return &Entry{}
	}
	return entry
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *Entry) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("method", e.Method).
		Str("path", e.Path).
		Bool("authorized", e.Authorized).
		Int("status", e.Status).
		Dur("duration", time.Since(e.start))

	if e.Query != "" {
		ev.Str("query", e.Query)
	}
	if e.SourceAddr != "" {
		ev.Str("sourceAddr", e.SourceAddr)
	}
	if e.UserAgent != "" {
		ev.Str("userAgent", e.UserAgent)
	}
	if e.Subject != "" {
		ev.Str("subject", e.Subject).Str("role", e.Role)
	}
	if e.Error != "" {
		ev.Str("error", e.Error)
	}
}

// Middleware installs the audit entry on the request context and emits the
// completed entry once the response has been written.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := &Entry{
				Method:     r.Method,
				Path:       r.URL.Path,
				Query:      r.URL.RawQuery,
				SourceAddr: r.RemoteAddr,
				UserAgent:  r.UserAgent(),
				start:      time.Now(),
			}

			ctx := context.WithValue(r.Context(), auditContextKey{}, entry)

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r.WithContext(ctx))

			entry.Status = sw.status
			if entry.Status == 0 {
				entry.Status = http.StatusOK
			}

			log.Ctx(r.Context()).Info().EmbedObject(entry).Msg("request")
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
