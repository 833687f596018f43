package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/projexhq/projex-api/internal/config"
)

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT registered claims plus account metadata.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Service handles JWT minting and verification with an HMAC secret.
type Service struct {
	cfg    config.TokenConfig
	secret []byte
	parser *jwt.Parser
}

// NewService returns a token service backed by the configured secret.
func NewService(cfg config.TokenConfig) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token secret is empty")
	}
	return &Service{
		cfg:    cfg,
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
		),
	}, nil
}

// Mint generates a signed JWT for the given user id and email.
func (s *Service) Mint(userID string, email string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(s.cfg.TTL)

	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Validate parses and verifies a token string, returning its claims.
func (s *Service) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := s.parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
