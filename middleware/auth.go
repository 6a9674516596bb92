package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/respond"
)

type contextKey string

const principalKey contextKey = "principal"

var errNoToken = errors.New("no bearer token")

// Claims is the session token payload.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for p that expires after ttl.
func IssueToken(secret string, p models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: p.ID,
		Email:  p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Auth rejects requests without a valid bearer token with 401.
func Auth(jwtSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := principalFromRequest(r, jwtSecret)
			if err != nil {
				respond.Error(w, r, apperr.Unauthorized("Unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// OptionalAuth attaches the principal when a valid token is present and lets
// every request through.
func OptionalAuth(jwtSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, err := principalFromRequest(r, jwtSecret); err == nil {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principalFromRequest(r *http.Request, jwtSecret string) (models.Principal, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return models.Principal{}, errNoToken
	}
	scheme, raw, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
		return models.Principal{}, errNoToken
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return models.Principal{}, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return models.Principal{}, errors.New("invalid token")
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return models.Principal{}, errors.New("invalid user id")
	}
	return models.Principal{ID: claims.UserID, Email: claims.Email}, nil
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// UserIDFromContext returns the caller's user id, if authenticated.
func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(p.ID)
	return id, err == nil
}
