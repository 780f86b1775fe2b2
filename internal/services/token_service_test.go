package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kavro/tidepool/internal/models"
	"github.com/kavro/tidepool/pkg/faults"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "unit-test-secret"
	testIssuer   = "tidepool"
	testAudience = "tidepool-api"
)

func newTestTokenService(ttl time.Duration) *TokenService {
	return NewTokenService(testSecret, ttl, testIssuer, testAudience)
}

func testAccount() *models.Account {
	return &models.Account{
		ID:          42,
		DisplayName: "Marta",
		Email:       "marta@example.com",
		Role:        models.RoleUser,
		Active:      true,
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	token, err := svc.Issue(testAccount())
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, models.RoleUser, claims.Role)
	require.Equal(t, "Marta", claims.DisplayName)
	require.Equal(t, testIssuer, claims.Issuer)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := newTestTokenService(-time.Minute)

	token, err := svc.Issue(testAccount())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.True(t, faults.IsKind(err, faults.Expired))
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	token, err := svc.Issue(testAccount())
	require.NoError(t, err)

	// Flip one character in the signature segment.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = svc.Verify(string(tampered))
	require.True(t, faults.IsKind(err, faults.SignatureInvalid))
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	_, err := svc.Verify("definitely-not-a-jwt")
	require.True(t, faults.IsKind(err, faults.Malformed))
}

func TestVerifyRejectsDifferentAlgorithm(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	claims := &models.TokenClaims{
		UserID:      42,
		Role:        models.RoleUser,
		DisplayName: "Marta",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.True(t, faults.IsKind(err, faults.SignatureInvalid))
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	other := NewTokenService(testSecret, time.Hour, testIssuer, "some-other-api")

	token, err := other.Issue(testAccount())
	require.NoError(t, err)

	_, err = newTestTokenService(time.Hour).Verify(token)
	require.True(t, faults.IsKind(err, faults.SignatureInvalid))
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	other := NewTokenService(testSecret, time.Hour, "someone-else", testAudience)

	token, err := other.Issue(testAccount())
	require.NoError(t, err)

	_, err = newTestTokenService(time.Hour).Verify(token)
	require.True(t, faults.IsKind(err, faults.SignatureInvalid))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	other := NewTokenService("another-secret", time.Hour, testIssuer, testAudience)

	token, err := other.Issue(testAccount())
	require.NoError(t, err)

	_, err = newTestTokenService(time.Hour).Verify(token)
	require.True(t, faults.IsKind(err, faults.SignatureInvalid))
}

func TestExtractFromHeader(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	token, err := svc.ExtractFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)
}

func TestExtractFromHeaderMissing(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	_, err := svc.ExtractFromHeader("")
	require.True(t, faults.IsKind(err, faults.MissingHeader))
}

func TestExtractFromHeaderMalformed(t *testing.T) {
	svc := newTestTokenService(time.Hour)

	tests := []struct {
		name   string
		header string
	}{
		{"no token", "Bearer"},
		{"lowercase scheme", "bearer abc"},
		{"wrong scheme", "Token abc"},
		{"too many parts", "Bearer abc def"},
		{"trailing space", "Bearer abc "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ExtractFromHeader(tt.header)
			require.True(t, faults.IsKind(err, faults.MalformedHeader))
		})
	}
}
