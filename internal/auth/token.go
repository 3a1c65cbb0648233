// Package auth implements token issuance and verification, the role-gated
// authorization middleware, and the signup/login service.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matchday/matchday-api/internal/api"
	"github.com/matchday/matchday-api/internal/cache"
)

// Roles recognized by the API. Role gates write routes only; reads are open
// to any authenticated subject (or, for search, to anonymous callers).
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// sessionTTL is the expiry of the session marker written at issuance. The
// marker is an auxiliary record only; it is never consulted during
// verification.
const sessionTTL = time.Hour

const roleClaim = "role"

// User is a credential record.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
}

// UserStore is the credential store boundary. Lookups return (nil, nil)
// when no record matches.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
}

// Identity is the verified principal attached to a request.
type Identity struct {
	UserID string
	Role   string
}

// Issuer signs and verifies identity tokens with a process-wide HS256
// secret. Tokens are stateless and die only by expiry; there is no
// revocation list. Verification additionally checks that the subject still
// exists, so deleted accounts are denied without revocation machinery at
// the cost of one store round-trip per authenticated request.
type Issuer struct {
	key      jwk.Key
	users    UserStore
	sessions cache.Store
	validity time.Duration
}

// NewIssuer creates an Issuer from the shared signing secret.
func NewIssuer(secret string, validity time.Duration, users UserStore, sessions cache.Store) (*Issuer, error) {
	key, err := jwk.Import([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("importing signing secret: %w", err)
	}

	return &Issuer{
		key:      key,
		users:    users,
		sessions: sessions,
		validity: validity,
	}, nil
}

// Issue produces a signed token for the subject. A session marker
// (session:<userID> -> token) is written to the cache as a side effect;
// the write is best-effort and a failure never fails issuance.
func (i *Issuer) Issue(ctx context.Context, userID, role string) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		Subject(userID).
		Claim(roleClaim, role).
		IssuedAt(now).
		Expiration(now.Add(i.validity)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token claims: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), i.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := i.sessions.Set(ctx, "session:"+userID, string(signed), sessionTTL); err != nil {
		log.Warn().Err(err).Str("subject", userID).Msg("session marker write failed")
	}

	return string(signed), nil
}

// Verify checks the token's signature and validity window, then confirms
// the subject still exists in the credential store. The returned identity
// comes from the signature payload, not from storage.
func (i *Issuer) Verify(ctx context.Context, token string) (Identity, error) {
	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256(), i.key),
		jwt.WithAcceptableSkew(5*time.Second),
	)
	if err != nil {
		return Identity{}, api.Unauthenticated("Invalid or expired token")
	}

	subject, ok := parsed.Subject()
	if !ok || subject == "" {
		return Identity{}, api.Unauthenticated("Invalid or expired token")
	}

	var role string
	if err := parsed.Get(roleClaim, &role); err != nil {
		return Identity{}, api.Unauthenticated("Invalid or expired token")
	}

	user, err := i.users.FindByID(ctx, subject)
	if err != nil {
		return Identity{}, fmt.Errorf("subject lookup: %w", err)
	}
	if user == nil {
		return Identity{}, api.Unauthenticated("User not found")
	}

	return Identity{UserID: subject, Role: role}, nil
}
