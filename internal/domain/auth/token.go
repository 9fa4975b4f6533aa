package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
)

// Identity is the claim set embedded in every issued token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// TokenIssuer signs and verifies admin session tokens. Verification is
// stateless; there is no server-side session table.
type TokenIssuer struct {
	secretKey []byte
	ttl       time.Duration
}

// NewTokenIssuer builds a token helper using the provided secret.
func NewTokenIssuer(secretKey string) *TokenIssuer {
	return &TokenIssuer{
		secretKey: []byte(secretKey),
		ttl:       24 * time.Hour,
	}
}

// WithTTL allows customising the expiration duration.
func (ti *TokenIssuer) WithTTL(ttl time.Duration) *TokenIssuer {
	if ttl > 0 {
		ti.ttl = ttl
	}
	return ti
}

// Generate issues a signed JWT carrying the identity claims.
func (ti *TokenIssuer) Generate(id Identity) (string, error) {
	if len(ti.secretKey) == 0 {
		return "", errors.New(errors.KindAuth, "token.generate", "token secret is empty")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"id":    id.ID,
		"email": id.Email,
		"name":  id.Name,
		"role":  id.Role,
		"exp":   now.Add(ti.ttl).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secretKey)
	if err != nil {
		return "", errors.Wrap(errors.KindAuth, "token.generate", "failed to sign token", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry and extracts the identity.
func (ti *TokenIssuer) Verify(tokenString string) (Identity, error) {
	if len(ti.secretKey) == 0 {
		return Identity{}, errors.New(errors.KindAuth, "token.verify", "token secret is empty")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secretKey, nil
	})
	if err != nil {
		return Identity{}, errors.Wrap(errors.KindAuth, "token.verify", "invalid or expired token", err)
	}
	if !token.Valid {
		return Identity{}, errors.New(errors.KindAuth, "token.verify", "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New(errors.KindAuth, "token.verify", "invalid claims")
	}

	id := Identity{}
	id.ID, _ = claims["id"].(string)
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Role, _ = claims["role"].(string)
	if id.Email == "" {
		return Identity{}, errors.New(errors.KindAuth, "token.verify", "missing identity claims")
	}
	return id, nil
}
