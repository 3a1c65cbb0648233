// Package httpcache implements whole-response caching for GET routes as a
// pair of composable middleware filters. The read filter (Page) must run
// before the handler; the write filter (Capture) must wrap the handler so
// it observes the emitted response body.
//
// Cached pages are never invalidated by writes: readers may observe stale
// data for up to the entry TTL. This is a deliberate tradeoff, not a bug.
package httpcache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/matchday/matchday-api/internal/cache"
)

// storeTimeout bounds the detached cache write started after a response
// has been delivered.
const storeTimeout = 5 * time.Second

type cacheKeyContextKey struct{}

// NormalizedKey derives the cache key for a request URL. Query parameter
// names are lowercased and sorted, values are left as-is, so that repeated
// identical requests collide on the same key regardless of parameter
// ordering or name case.
func NormalizedKey(prefix string, u *url.URL) string {
	normalized := url.Values{}
	for name, values := range u.Query() {
		lower := strings.ToLower(name)
		normalized[lower] = append(normalized[lower], values...)
	}

	// url.Values.Encode emits keys in sorted order
	return prefix + ":" + u.Path + "?" + normalized.Encode()
}

// Page is the read filter. On a cache hit the stored payload is replayed
// verbatim as a 200 JSON response and the handler chain stops; on a miss
// (including any cache failure) the derived key is stashed on the request
// context for Capture and the chain continues.
func Page(store cache.Store, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := NormalizedKey(prefix, r.URL)

			payload, found, err := store.Get(r.Context(), key)
			if err != nil {
				// degrade to a miss; the source of truth still serves the request
				log.Warn().Err(err).Str("key", key).Msg("page cache read failed")
			}

			if found && json.Valid([]byte(payload)) {
				log.Info().Str("key", key).Msg("page cache hit")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				if _, err := w.Write([]byte(payload)); err != nil {
					log.Info().Msgf("failed to write cached response: %v", err)
				}
				return
			}

			log.Debug().Str("key", key).Msg("page cache miss")
			ctx := context.WithValue(r.Context(), cacheKeyContextKey{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// KeyFromContext returns the cache key stashed by Page, if any.
func KeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(cacheKeyContextKey{}).(string)
	return key, ok
}

// Capture is the write filter. It tees the response body while it is being
// delivered to the client, then stores the captured payload under the key
// stashed by Page. The store happens on a detached goroutine so response
// delivery is never delayed; failures are logged and swallowed.
func Capture(store cache.Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &teeRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			key, ok := KeyFromContext(r.Context())
			if !ok || rec.body.Len() == 0 {
				return
			}

			payload := rec.body.String()
			ctx := context.WithoutCancel(r.Context())

			go func() {
				ctx, cancel := context.WithTimeout(ctx, storeTimeout)
				defer cancel()

				if err := store.Set(ctx, key, payload, ttl); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("page cache write failed")
					return
				}
				log.Info().Str("key", key).Dur("ttl", ttl).Msg("page cache set")
			}()
		})
	}
}

// teeRecorder forwards writes to the client while retaining a copy of the
// body for the cache.
type teeRecorder struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (t *teeRecorder) WriteHeader(status int) {
	t.status = status
	t.ResponseWriter.WriteHeader(status)
}

func (t *teeRecorder) Write(p []byte) (int, error) {
	t.body.Write(p)
	return t.ResponseWriter.Write(p)
}
