// Package token verifies bearer tokens that identify the acting user.
package token

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/hawthornlabs/journey/internal/platform/errors"
)

// verifierEnv holds raw env values before post-parse validation.
type verifierEnv struct {
	Issuer    string `env:"JOURNEY_TOKEN_ISSUER"`
	Audience  string `env:"JOURNEY_TOKEN_AUDIENCE"`
	PublicKey string `env:"JOURNEY_TOKEN_PUBLIC_KEY"`
}

// Verifier validates EdDSA-signed user tokens.
type Verifier struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// Claims captures validated user token claims.
type Claims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	NotBefore time.Time
	IssuedAt  time.Time
	JWTID     string
	UserID    string
}

// userClaims is the internal claims type used for JWT parsing.
type userClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// LoadVerifierFromEnv reads token verification configuration.
//
// Token verification is opt-in: when none of the JOURNEY_TOKEN_* variables
// are set the second return value is false and callers should fall back to
// transport-provided identity. Partially configured env is an error.
func LoadVerifierFromEnv(now func() time.Time) (*Verifier, bool, error) {
	var raw verifierEnv
	if err := env.Parse(&raw); err != nil {
		return nil, false, fmt.Errorf("parse token env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" && audience == "" && publicKey == "" {
		return nil, false, nil
	}
	if issuer == "" {
		return nil, false, fmt.Errorf("JOURNEY_TOKEN_ISSUER is required")
	}
	if audience == "" {
		return nil, false, fmt.Errorf("JOURNEY_TOKEN_AUDIENCE is required")
	}
	if publicKey == "" {
		return nil, false, fmt.Errorf("JOURNEY_TOKEN_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return nil, false, fmt.Errorf("decode token public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return nil, false, fmt.Errorf("token public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, true, nil
}

// Verify validates a bearer token and returns its claims.
func (v *Verifier) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "token is required")
	}
	if v == nil || v.Issuer == "" || v.Audience == "" || len(v.Key) != ed25519.PublicKeySize {
		return Claims{}, errors.New("token verifier is not configured")
	}
	now := v.Now
	if now == nil {
		now = time.Now
	}

	var parsed userClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return v.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != v.Issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"token issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, v.Audience) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"token audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "token exp is required")
	}

	current := now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(current) {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "token is expired")
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if current.Before(nbf) {
			return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "token not active yet")
		}
	}
	if strings.TrimSpace(parsed.UserID) == "" {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "token user_id claim is required")
	}

	claims := Claims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		UserID:    parsed.UserID,
	}
	if parsed.NotBefore != nil {
		claims.NotBefore = parsed.NotBefore.Time.UTC()
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeTokenInvalid, "token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeTokenInvalid, "token alg is invalid")
	}
	return apperrors.Wrap(apperrors.CodeTokenInvalid, "token is malformed", err)
}

func audienceContains(audience jwt.ClaimStrings, expected string) bool {
	for _, value := range audience {
		if value == expected {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(value)
}
