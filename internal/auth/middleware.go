package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/matchday/matchday-api/internal/api"
	"github.com/matchday/matchday-api/internal/audit"
)

type identityContextKey struct{}

// ContextWithIdentity returns a new context carrying the verified identity.
// This is primarily for test usage; production code relies on RequireRole.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity attached by RequireRole. The
// second return is false when the request did not pass through the
// authorization middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// RequireRole returns middleware enforcing a bearer token and, when roles
// is non-empty, membership in the given role set. An empty role set means
// "authenticated, any role". On success the verified identity is attached
// to the request context.
func RequireRole(issuer *Issuer, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := audit.Log(r.Context())

			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				log.Warn().Msg("missing token in request")
				entry.Error = "missing token"
				api.WriteError(w, api.Unauthenticated("Token is missing or invalid!"))
				return
			}

			id, err := issuer.Verify(r.Context(), token)
			if err != nil {
				entry.Error = err.Error()

				var statuser api.Statuser
				if !errors.As(err, &statuser) {
					log.Error().Err(err).Msg("token validation error")
					api.WriteError(w, api.Internal("Something went wrong during token validation"))
					return
				}

				log.Warn().Err(err).Msg("invalid token")
				api.WriteError(w, err)
				return
			}

			entry.Authorized = true
			entry.Subject = id.UserID
			entry.Role = id.Role

			if len(roles) > 0 && !slices.Contains(roles, id.Role) {
				log.Warn().
					Str("subject", id.UserID).
					Str("role", id.Role).
					Msg("unauthorized access attempt")
				entry.Error = "insufficient privileges"
				api.WriteError(w, api.Forbidden("You do not have sufficient privileges to access this resource"))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
		})
	}
}

// extractBearer returns the token portion of an "Authorization: Bearer x"
// header, or "" when the header is absent or malformed.
func extractBearer(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
