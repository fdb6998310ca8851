// Package auth mints and verifies the HS256 staff tokens that guard the
// admin API. Customers never authenticate; only operators carry tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/pkg/config"
)

// clockSkew tolerates small clock drift between the minting host and the API.
const clockSkew = 30 * time.Second

var signingMethod = jwt.SigningMethodHS256

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("invalid staff token")

// Signer holds a validated JWT configuration.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSigner checks cfg once so minting and parsing cannot run with a blank
// secret or a non-positive lifetime.
func NewSigner(cfg config.JWTConfig) (*Signer, error) {
	switch {
	case strings.TrimSpace(cfg.Secret) == "":
		return nil, errors.New("jwt secret is required")
	case strings.TrimSpace(cfg.Issuer) == "":
		return nil, errors.New("jwt issuer is required")
	case cfg.ExpirationMinutes <= 0:
		return nil, errors.New("jwt expiration minutes must be positive")
	}
	return &Signer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    time.Duration(cfg.ExpirationMinutes) * time.Minute,
	}, nil
}

// Mint signs a token for payload valid from now for the configured lifetime.
func (s *Signer) Mint(now time.Time, payload StaffTokenPayload) (string, error) {
	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	claims := StaffClaims{
		Role: payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.TrimSpace(payload.Subject),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        jti,
		},
	}
	if err := claims.Validate(); err != nil {
		return "", err
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns its claims. Failures wrap ErrInvalidToken.
func (s *Signer) Parse(token string) (*StaffClaims, error) {
	claims := &StaffClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// MintStaffToken is the one-shot form of NewSigner followed by Mint.
func MintStaffToken(cfg config.JWTConfig, now time.Time, payload StaffTokenPayload) (string, error) {
	signer, err := NewSigner(cfg)
	if err != nil {
		return "", err
	}
	return signer.Mint(now, payload)
}

// ParseStaffToken is the one-shot form of NewSigner followed by Parse.
func ParseStaffToken(cfg config.JWTConfig, token string) (*StaffClaims, error) {
	signer, err := NewSigner(cfg)
	if err != nil {
		return nil, err
	}
	return signer.Parse(token)
}
