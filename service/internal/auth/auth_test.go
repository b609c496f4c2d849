// internal/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/equilibrium/service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestIssueAndParse(t *testing.T) {
	user := models.User{ID: uuid.New(), Username: "Fern"}
	tok, err := IssueToken(secret, user, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Fern", got.Username)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := IssueToken(secret, models.User{ID: uuid.New(), Username: "A"}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other"), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tok, err := IssueToken(secret, models.User{ID: uuid.New(), Username: "A"}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(secret, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Name: "A",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(secret, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsBadSubject(t *testing.T) {
	claims := Claims{
		Name: "A",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(secret, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewGuest(t *testing.T) {
	u, err := NewGuest("  Moss  ")
	require.NoError(t, err)
	assert.Equal(t, "Moss", u.Username)
	assert.NotEqual(t, uuid.Nil, u.ID)

	_, err = NewGuest("   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewGuest("abcdefghijklmnopqrstuvwxyz")
	assert.ErrorIs(t, err, ErrInvalidName)
}
