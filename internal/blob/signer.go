package blob

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signedURLIssuer = "remit-console/proofs"

var ErrInvalidToken = errors.New("blob: invalid or expired link")

type linkClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens naming a single object path.
type Signer struct {
	key []byte
	now func() time.Time
}

func NewSigner(key string) (*Signer, error) {
	if len(key) < 32 {
		return nil, errors.New("blob: signing key must be at least 32 characters")
	}
	return &Signer{key: []byte(key), now: time.Now}, nil
}

// Sign returns a token granting read access to path until ttl elapses.
func (s *Signer) Sign(path string, ttl time.Duration) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	now := s.now()
	claims := linkClaims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    signedURLIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign proof link: %w", err)
	}
	return token, nil
}

// Verify returns the object path carried by a valid, unexpired token.
func (s *Signer) Verify(token string) (string, error) {
	claims := &linkClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(signedURLIssuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Path == "" {
		return "", ErrInvalidToken
	}
	return claims.Path, nil
}
