package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceFixture(t *testing.T) (*Service, *Issuer, *fakeUserStore) {
	t.Helper()
	users := newFakeUserStore()
	issuer, err := NewIssuer("test-secret", time.Hour, users, newFakeSessions())
	require.NoError(t, err)
	return NewService(users, issuer), issuer, users
}

func validSignUp(role string) SignUpRequest {
	return SignUpRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     role + "@x.com",
		Password:  "Sup3rSecret!",
		Role:      role,
	}
}

func TestSignUp_Success(t *testing.T) {
	svc, _, users := serviceFixture(t)

	err := svc.SignUp(context.Background(), validSignUp("admin"))
	require.NoError(t, err)

	stored, err := users.FindByEmail(context.Background(), "admin@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "admin", stored.Role)
	assert.NotEqual(t, "Sup3rSecret!", stored.Password, "password must be stored hashed")
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _, _ := serviceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SignUp(ctx, validSignUp("user")))

	err := svc.SignUp(ctx, validSignUp("user"))
	require.Error(t, err)
	assertStatus(t, err, 409, "User already exists in the database")
}

func TestSignUp_ValidationFailures(t *testing.T) {
	svc, _, _ := serviceFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*SignUpRequest)
		message string
	}{
		{
			name:    "short first name",
			mutate:  func(r *SignUpRequest) { r.FirstName = "A" },
			message: "First name must be at least 2 characters long",
		},
		{
			name:    "invalid email",
			mutate:  func(r *SignUpRequest) { r.Email = "not-an-email" },
			message: "Please provide a valid email address",
		},
		{
			name:    "short password",
			mutate:  func(r *SignUpRequest) { r.Password = "Ab1!" },
			message: "Password must be at least 8 characters long",
		},
		{
			name:    "weak password",
			mutate:  func(r *SignUpRequest) { r.Password = "alllowercase" },
			message: "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character",
		},
		{
			name:    "unknown role",
			mutate:  func(r *SignUpRequest) { r.Role = "superuser" },
			message: `Role must be either "admin" or "user"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSignUp("user")
			tc.mutate(&req)

			err := svc.SignUp(ctx, req)
			require.Error(t, err)
			assertStatus(t, err, 422, tc.message)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	svc, issuer, _ := serviceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SignUp(ctx, validSignUp("admin")))

	token, err := svc.Login(ctx, LoginRequest{Email: "admin@x.com", Password: "Sup3rSecret!"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := issuer.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, id.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := serviceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.SignUp(ctx, validSignUp("user")))

	_, err := svc.Login(ctx, LoginRequest{Email: "user@x.com", Password: "Wr0ngPass!"})
	require.Error(t, err)
	assertStatus(t, err, 400, "Invalid credentials")
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := serviceFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@x.com", Password: "Sup3rSecret!"})
	require.Error(t, err)
	assertStatus(t, err, 400, "Invalid credentials")
}
