package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// TokenClaims represents the custom claims in session tokens.
type TokenClaims struct {
	Store     string `json:"store"`
	Username  string `json:"username"`
	LoginTime int64  `json:"login_time"`
	jwt.RegisteredClaims
}

// TokenSigner issues and validates HS256 session tokens.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenSigner creates a signer. now may be nil.
func NewTokenSigner(secret []byte, ttl time.Duration, now func() time.Time) *TokenSigner {
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{secret: secret, ttl: ttl, now: now}
}

// Issue signs a token for a freshly authenticated login.
func (s *TokenSigner) Issue(login domain.CurrentLogin, identity domain.Identity) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Store:     login.StoreID,
		Username:  identity.Username,
		LoginTime: identity.LoginTime.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login.EmployeeID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "store-portal",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates signature and expiry.
func (s *TokenSigner) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired session token"}
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid session token"}
	}
	return claims, nil
}

// identity rebuilds the displayed identity from token claims.
func (c *TokenClaims) identity() domain.Identity {
	return domain.Identity{
		Username:  c.Username,
		LoginTime: time.Unix(c.LoginTime, 0).UTC(),
	}
}
