package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/domain/types"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
)

// AnonymousUser is the author used when authentication is disabled
const AnonymousUser types.UserID = "anonymous"

// Authenticator verifies HS256 bearer tokens whose subject is the author's
// user id
type Authenticator struct {
	secret           []byte
	noAuthentication bool
}

// NewAuthenticator creates a new authenticator. With noAuthentication every
// request runs as AnonymousUser.
func NewAuthenticator(secret string, noAuthentication bool) *Authenticator {
	return &Authenticator{
		secret:           []byte(secret),
		noAuthentication: noAuthentication,
	}
}

// Middleware rejects requests without a valid bearer token
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.noAuthentication {
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), AnonymousUser)))
			return
		}

		userID, err := a.verify(r.Header.Get("Authorization"))
		if err != nil {
			ctxlog.From(r.Context()).Debug("authentication failed", "error", err)
			writeUnauthorizedResponse(w, "Authentication required")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), userID)))
	})
}

func (a *Authenticator) verify(header string) (types.UserID, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", goerr.New("missing bearer token", goerr.T(apperr.ErrTagUnauthorized))
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, goerr.New("unexpected signing method", goerr.V("alg", token.Header["alg"]))
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", goerr.Wrap(err, "invalid token", goerr.T(apperr.ErrTagUnauthorized))
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", goerr.New("token has no subject", goerr.T(apperr.ErrTagUnauthorized))
	}
	return types.UserID(sub), nil
}

// IssueToken signs a token for userID valid for ttl
func (a *Authenticator) IssueToken(userID types.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token", goerr.TV(apperr.UserIDKey, userID))
	}
	return signed, nil
}

// writeUnauthorizedResponse writes an unauthorized response
func writeUnauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"kind":    string(apperr.KindUnauthorized),
			"message": message,
		},
	})
}
