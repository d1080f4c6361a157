package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "mindengage-prep"

type AuthService struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &AuthService{hmac: []byte(secret), ttl: ttl, now: time.Now}
}

type Claims struct {
	jwt.RegisteredClaims
}

// IssueJWT signs a session token whose subject is the user's email.
func (a *AuthService) IssueJWT(email string) (string, error) {
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// BearerMiddleware requires "Authorization: Bearer <token>".
//
// With strict=false any non-empty token is accepted and the subject is taken
// from the email query parameter. With strict=true the token must be a valid
// JWT from this service and a present email parameter must match its subject.
func BearerMiddleware(a *AuthService, strict bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if !strings.HasPrefix(h, "Bearer ") || tok == "" {
				deny(w, http.StatusUnauthorized, "no token provided")
				return
			}
			email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
			if !strict {
				next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), email)))
				return
			}
			c, err := a.Parse(tok)
			if err != nil {
				deny(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if email != "" && email != c.Subject {
				deny(w, http.StatusForbidden, "token does not belong to this user")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), c.Subject)))
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
