package session

import (
	"fmt"
	"time"

	"github.com/ghaggin/cems/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload the auth service signs into a credential token.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) user() (*model.User, error) {
	if c.UserID == "" || c.Username == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}
	role, err := model.ParseRole(c.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &model.User{
		ID:       c.UserID,
		Username: c.Username,
		Role:     role,
	}, nil
}

// expired reports whether the token is unusable at now. A token without an
// expiry never counts as valid.
func (c *Claims) expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.Time.After(now)
}

// Decoder turns a token string into claims. Expiry is checked by the
// Manager against its own clock, not by the decoder.
type Decoder interface {
	Decode(token string) (*Claims, error)
}

// NewDecoder returns a decoder that verifies HMAC signatures with secret,
// or one that only decodes the claims when secret is empty.
func NewDecoder(secret string) Decoder {
	if secret == "" {
		return &unverifiedDecoder{parser: jwt.NewParser()}
	}

	return &hmacDecoder{
		key: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{
				jwt.SigningMethodHS256.Alg(),
				jwt.SigningMethodHS384.Alg(),
				jwt.SigningMethodHS512.Alg(),
			}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

type unverifiedDecoder struct {
	parser *jwt.Parser
}

func (d *unverifiedDecoder) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

type hmacDecoder struct {
	key    []byte
	parser *jwt.Parser
}

func (d *hmacDecoder) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := d.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return d.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
