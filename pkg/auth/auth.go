package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	apperrors "openspace/pkg/errors"
	httputil "openspace/pkg/http"
	"openspace/pkg/logger"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"

	bearerPrefix = "Bearer "
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller, taken from the token claims.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Authenticator verifies HS256 bearer tokens and guards routes.
type Authenticator struct {
	secret []byte
	log    *logger.Logger
	now    func() time.Time
}

func NewAuthenticator(secret string, log *logger.Logger) *Authenticator {
	if log == nil {
		log = logger.Discard()
	}
	return &Authenticator{
		secret: []byte(secret),
		log:    log.Component("auth"),
		now:    time.Now,
	}
}

// IssueToken signs a token for id. The service itself only verifies tokens;
// issuing is used by tests and local tooling.
func (a *Authenticator) IssueToken(id Identity, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) Parse(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = RoleUser
	}
	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   role,
	}, nil
}

// RequireUser rejects requests without a valid bearer token.
func (a *Authenticator) RequireUser(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)), ps)
	}
}

// RequireAdmin additionally requires the admin role.
func (a *Authenticator) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if !id.IsAdmin() {
			a.log.Warn("admin route denied", "user_id", id.UserID, "path", r.URL.Path)
			a.writeError(w, apperrors.Forbidden("Administrator role required"))
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)), ps)
	}
}

func (a *Authenticator) authenticate(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		a.writeError(w, apperrors.Unauthorized("Missing authorization header"))
		return Identity{}, false
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		a.writeError(w, apperrors.Unauthorized("Invalid authorization header format"))
		return Identity{}, false
	}

	id, err := a.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
	if err != nil {
		a.log.Debug("token rejected", "path", r.URL.Path, "error", err)
		a.writeError(w, apperrors.Unauthorized("Invalid or expired token"))
		return Identity{}, false
	}
	return id, true
}

func (a *Authenticator) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		a.log.Error("failed to write error response", "operation", "WriteError", "error", writeErr)
	}
}
