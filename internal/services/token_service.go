package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/pkg/faults"
)

// TokenService issues and verifies HMAC-SHA256 signed identity claims.
// Verification is pure and stateless, safe for unrestricted parallel use.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
}

// NewTokenService creates a TokenService signing with the given process-wide
// secret.
func NewTokenService(secret string, ttl time.Duration, issuer, audience string) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		issuer:   issuer,
		audience: audience,
	}
}

// Issue embeds the account's identity in a signed token valid for the
// configured lifetime.
func (s *TokenService) Issue(account *models.Account) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID:      account.ID,
		Role:        account.Role,
		DisplayName: account.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Email,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", faults.Wrap(faults.IssueFailure, "failed to sign token", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. The signing algorithm, issuer,
// and audience are re-checked on every call so a token signed with a
// different method or minted for another audience never passes. Expiry is
// reported separately from signature and shape problems.
func (s *TokenService) Verify(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing algorithm")
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, faults.New(faults.Expired, "token has expired")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, faults.New(faults.Malformed, "token is malformed")
		default:
			return nil, faults.New(faults.SignatureInvalid, "token signature is invalid")
		}
	}
	if !token.Valid {
		return nil, faults.New(faults.SignatureInvalid, "token signature is invalid")
	}

	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, faults.New(faults.SignatureInvalid, "token issuer mismatch")
	}
	if !claims.VerifyAudience(s.audience, true) {
		return nil, faults.New(faults.SignatureInvalid, "token audience mismatch")
	}
	if !claims.Role.Valid() {
		return nil, faults.New(faults.Malformed, "token carries an unknown role")
	}

	return claims, nil
}

// ExtractFromHeader pulls the raw token out of an Authorization header
// value. The header must be exactly two space-separated parts, the first
// literally "Bearer".
func (s *TokenService) ExtractFromHeader(value string) (string, error) {
	if value == "" {
		return "", faults.New(faults.MissingHeader, "missing Authorization header")
	}
	parts := strings.Split(value, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", faults.New(faults.MalformedHeader, "Authorization header must be of the form 'Bearer <token>'")
	}
	return parts[1], nil
}
