package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenMaker("test-secret", 15*time.Minute)
	tok, err := tm.New(User{ID: "u_1", Email: "a@example.com", Role: RoleAdmin})
	require.NoError(t, err)

	claims, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u_1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "u_1", claims.Subject)
}

func TestTokenMaker_RejectsOtherSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenMaker("secret-a", time.Minute).New(User{ID: "u_1", Role: RoleUser})
	require.NoError(t, err)

	_, err = NewTokenMaker("secret-b", time.Minute).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMaker_RejectsExpired(t *testing.T) {
	t.Parallel()

	tm := NewTokenMaker("test-secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	tm.now = func() time.Time { return issued }

	tok, err := tm.New(User{ID: "u_1", Role: RoleUser})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMaker_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := NewTokenMaker("test-secret", time.Minute).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
