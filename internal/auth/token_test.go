package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matchday/matchday-api/internal/api"
)

// fakeUserStore is an in-memory UserStore for tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*User // by hex id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*User{}}
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) Insert(ctx context.Context, user *User) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID.Hex()] = user
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

// fakeSessions is a minimal cache.Store recording session marker writes.
type fakeSessions struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
	setErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeSessions) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fakeSessions) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeSessions) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeSessions) Close() error { return nil }

func testUser(t *testing.T, store *fakeUserStore, role string) *User {
	t.Helper()
	u, err := store.Insert(context.Background(), &User{
		FirstName: "Test",
		LastName:  "Subject",
		Email:     role + "@example.com",
		Password:  "irrelevant",
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func TestIssuer_IssueVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	sessions := newFakeSessions()

	issuer, err := NewIssuer("test-secret", time.Hour, users, sessions)
	require.NoError(t, err)

	user := testUser(t, users, RoleAdmin)

	token, err := issuer.Issue(ctx, user.ID.Hex(), user.Role)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := issuer.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: user.ID.Hex(), Role: RoleAdmin}, id)
}

func TestIssuer_IssueRecordsSessionMarker(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	sessions := newFakeSessions()

	issuer, err := NewIssuer("test-secret", time.Hour, users, sessions)
	require.NoError(t, err)

	user := testUser(t, users, RoleUser)

	token, err := issuer.Issue(ctx, user.ID.Hex(), user.Role)
	require.NoError(t, err)

	marker, found, err := sessions.Get(ctx, "session:"+user.ID.Hex())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, token, marker)
	assert.Equal(t, time.Hour, sessions.ttls["session:"+user.ID.Hex()])
}

func TestIssuer_SessionMarkerFailureDoesNotFailIssuance(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	sessions := newFakeSessions()
	sessions.setErr = errors.New("connection refused")

	issuer, err := NewIssuer("test-secret", time.Hour, users, sessions)
	require.NoError(t, err)

	user := testUser(t, users, RoleUser)

	token, err := issuer.Issue(ctx, user.ID.Hex(), user.Role)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestIssuer_VerifyRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()

	// negative validity produces an already-expired token
	issuer, err := NewIssuer("test-secret", -time.Hour, users, newFakeSessions())
	require.NoError(t, err)

	user := testUser(t, users, RoleUser)

	token, err := issuer.Issue(ctx, user.ID.Hex(), user.Role)
	require.NoError(t, err)

	_, err = issuer.Verify(ctx, token)
	require.Error(t, err)
	assertStatus(t, err, 401, "Invalid or expired token")
}

func TestIssuer_VerifyRejectsGarbage(t *testing.T) {
	users := newFakeUserStore()
	issuer, err := NewIssuer("test-secret", time.Hour, users, newFakeSessions())
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), "not-a-token")
	require.Error(t, err)
	assertStatus(t, err, 401, "Invalid or expired token")
}

func TestIssuer_VerifyRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	user := testUser(t, users, RoleAdmin)

	other, err := NewIssuer("other-secret", time.Hour, users, newFakeSessions())
	require.NoError(t, err)

	token, err := other.Issue(ctx, user.ID.Hex(), user.Role)
	require.NoError(t, err)

	issuer, err := NewIssuer("test-secret", time.Hour, users, newFakeSessions())
	require.NoError(t, err)

	_, err = issuer.Verify(ctx, token)
	require.Error(t, err)
	assertStatus(t, err, 401, "Invalid or expired token")
}

func TestIssuer_VerifyRejectsDeletedSubject(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	sessions := newFakeSessions()

	issuer, err := NewIssuer("test-secret", time.Hour, users, sessions)
	require.NoError(t, err)

	user := testUser(t, users, RoleUser)

	token, err := issuer.Issue(ctx, user.ID.Hex(), user.Role)
	require.NoError(t, err)

	// the account disappears after issuance; existing tokens must stop working
	users.delete(user.ID.Hex())

	_, err = issuer.Verify(ctx, token)
	require.Error(t, err)
	assertStatus(t, err, 401, "User not found")
}

func assertStatus(t *testing.T, err error, wantCode int, wantMessage string) {
	t.Helper()
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, wantCode, apiErr.Code)
	assert.Equal(t, wantMessage, apiErr.Message)
}
