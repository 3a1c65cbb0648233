package main

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/matchday/matchday-api/internal/api"
)

func handleHealthCheck() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func maxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, limit)
	}
}

// rateLimit applies a per-client-IP token bucket. perMinute <= 0 disables
// the limiter. Stale client buckets are pruned opportunistically.
func rateLimit(perMinute int, message string) func(http.Handler) http.Handler {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	lookup := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if len(clients) > 10_000 {
			for ip, c := range clients {
				if time.Since(c.lastSeen) > 10*time.Minute {
					delete(clients, ip)
				}
			}
		}

		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		return c.limiter
	}

	return func(next http.Handler) http.Handler {
		if perMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lookup(clientIP(r)).Allow() {
				api.WriteJSON(w, http.StatusTooManyRequests, api.ErrorBody{
					Status:     "error",
					Message:    message,
					StatusCode: http.StatusTooManyRequests,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// decodeJSON unmarshals the request body into dst, translating failures
// into a client-facing 400.
func decodeJSON(r *http.Request, dst any) error {
	defer drainRequestBody(r)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return api.BadRequest("Invalid request body")
	}
	return nil
}

// drainRequestBody consumes any unread request body so HTTP/1 connections
// can be reused.
func drainRequestBody(r *http.Request) {
	if r.Body != nil {
		io.CopyN(io.Discard, r.Body, 5*1024*1024)
	}
}

func parsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
