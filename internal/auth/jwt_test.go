package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/auth"
)

const testSecret = "test-secret-key"

func signed(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestGenerateAndParseToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, 24*time.Hour)
	userID := uuid.New()

	token, err := issuer.Generate(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsed, err := issuer.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseToken_InvalidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)

	_, err := issuer.Parse("invalid-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token := signed(t, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, "another-secret")

	_, err := issuer.Parse(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token := signed(t, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(-1 * time.Hour).Unix(),
	}, testSecret)

	_, err := issuer.Parse(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingClaims(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token := signed(t, jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}, testSecret)

	_, err := issuer.Parse(token)

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
	assert.Equal(t, "invalid claims", err.Error())
}

func TestParseToken_NotAUUID(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token := signed(t, jwt.MapClaims{
		"user_id": "not-a-valid-uuid",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, err := issuer.Parse(token)

	assert.ErrorIs(t, err, auth.ErrInvalidUserID)
}
