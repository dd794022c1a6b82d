package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ArtistIDKey is the context key for storing the authenticated artist ID.
	ArtistIDKey contextKey = "artist_id"
)

// GetArtistID extracts the artist ID from the context.
// Returns empty string if not found.
func GetArtistID(ctx context.Context) string {
	artistID, _ := ctx.Value(ArtistIDKey).(string)
	return artistID
}

// WithArtistID returns a copy of ctx carrying artistID.
func WithArtistID(ctx context.Context, artistID string) context.Context {
	return context.WithValue(ctx, ArtistIDKey, artistID)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, and adds
// the artist ID to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithArtistID(ctx, claims.ArtistID), req)
		}
	}
}

// OptionalAuth returns a middleware that validates JWT tokens if present, but allows
// requests without authentication. Requests without a valid token act as
// fallbackArtist, which is meant for single-artist local setups.
func OptionalAuth(jwtManager *auth.JWTManager, fallbackArtist string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			artistID := fallbackArtist
			if tokenString, ok := bearerToken(req.Header().Get("Authorization")); ok {
				// ignore errors - optional auth
				if claims, err := jwtManager.Validate(tokenString); err == nil {
					artistID = claims.ArtistID
				}
			}
			if artistID != "" {
				ctx = WithArtistID(ctx, artistID)
			}
			return next(ctx, req)
		}
	}
}
