package httpcache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/justinas/alice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory cache.Store recording operations for assertions.
// Set signals the sets channel so tests can wait for the detached write.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	setErr  error
	sets    chan string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: map[string]string{},
		sets:    make(chan string, 10),
	}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	value, ok := f.entries[key]
	return value, ok, nil
}

func (f *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	f.sets <- key
	return nil
}

func (f *fakeStore) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestNormalizedKey_SortsAndLowercasesNames(t *testing.T) {
	a := NormalizedKey("fixtures", mustURL(t, "/api/v1/fixtures/view-fixtures?status=pending&page=1"))
	b := NormalizedKey("fixtures", mustURL(t, "/api/v1/fixtures/view-fixtures?Page=1&Status=pending"))

	assert.Equal(t, a, b)
	assert.Equal(t, "fixtures:/api/v1/fixtures/view-fixtures?page=1&status=pending", a)
}

func TestNormalizedKey_ValuesLeftAsIs(t *testing.T) {
	key := NormalizedKey("fixtures", mustURL(t, "/search?Query=Mock"))
	assert.Equal(t, "fixtures:/search?query=Mock", key)
}

func TestNormalizedKey_NoQuery(t *testing.T) {
	key := NormalizedKey("teams", mustURL(t, "/api/v1/teams/views"))
	assert.Equal(t, "teams:/api/v1/teams/views?", key)
}

func TestPage_HitShortCircuits(t *testing.T) {
	store := newFakeStore()
	store.entries[`fixtures:/fixtures?`] = `{"status":"success"}`

	invoked := false
	handler := Page(store, "fixtures")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/fixtures", nil))

	assert.False(t, invoked, "downstream handler must not run on a hit")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"success"}`, rr.Body.String())
}

func TestPage_MissStashesKey(t *testing.T) {
	store := newFakeStore()

	var stashed string
	var ok bool
	handler := Page(store, "fixtures")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stashed, ok = KeyFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/fixtures?b=2&A=1", nil))

	require.True(t, ok)
	assert.Equal(t, "fixtures:/fixtures?a=1&b=2", stashed)
}

func TestPage_StoreErrorDegradesToMiss(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")

	invoked := false
	handler := Page(store, "fixtures")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoked = true
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/fixtures", nil))

	assert.True(t, invoked, "cache failure must fall through to the handler")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCapture_StoresEmittedBody(t *testing.T) {
	store := newFakeStore()

	chain := alice.New(
		Page(store, "fixtures"),
		Capture(store, time.Hour),
	).Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":[]}`))
	}))

	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, httptest.NewRequest("GET", "/fixtures", nil))

	// response delivered before (and regardless of) the cache write
	assert.JSONEq(t, `{"status":"success","data":[]}`, rr.Body.String())

	select {
	case key := <-store.sets:
		assert.Equal(t, "fixtures:/fixtures?", key)
	case <-time.After(time.Second):
		t.Fatal("expected detached cache write")
	}

	value, found, err := store.Get(context.Background(), "fixtures:/fixtures?")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"status":"success","data":[]}`, value)
}

func TestCapture_NoKeyNoWrite(t *testing.T) {
	store := newFakeStore()

	// Capture without Page: nothing stashed, nothing stored
	handler := Capture(store, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/fixtures", nil))

	select {
	case <-store.sets:
		t.Fatal("unexpected cache write")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPageAndCapture_SecondRequestServedFromCache(t *testing.T) {
	store := newFakeStore()

	computations := 0
	chain := alice.New(
		Page(store, "fixtures"),
		Capture(store, time.Hour),
	).Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		computations++
		w.Write([]byte(`{"status":"success","total":1}`))
	}))

	first := httptest.NewRecorder()
	chain.ServeHTTP(first, httptest.NewRequest("GET", "/fixtures?status=pending&page=1", nil))

	select {
	case <-store.sets:
	case <-time.After(time.Second):
		t.Fatal("expected cache write after first request")
	}

	// same logical query, different parameter order and name case
	second := httptest.NewRecorder()
	chain.ServeHTTP(second, httptest.NewRequest("GET", "/fixtures?Page=1&Status=pending", nil))

	assert.Equal(t, 1, computations, "second request must be served from cache")
	assert.Equal(t, first.Body.String(), second.Body.String())
}
