package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collecthub-backend/internal/models"
)

type tokenFixture struct {
	tokens map[uint]*models.ResetToken
}

func (f *tokenFixture) store() resetTokens {
	return resetTokens{
		latest: func(userID uint) (*models.ResetToken, error) {
			return f.tokens[userID], nil
		},
		replace: func(userID uint, hash []byte) error {
			f.tokens[userID] = &models.ResetToken{UserId: userID, Token: hash, CreatedAt: time.Now()}
			return nil
		},
		purge: func(userID uint) {
			delete(f.tokens, userID)
		},
	}
}

func TestResetTokenLatestWins(t *testing.T) {
	f := &tokenFixture{tokens: map[uint]*models.ResetToken{}}
	store := f.store()

	first, err := issueResetToken(store, 7)
	require.NoError(t, err)
	second, err := issueResetToken(store, 7)
	require.NoError(t, err)

	// requesting twice invalidates the first link
	assert.False(t, verifyResetToken(store, 7, first))
	assert.True(t, verifyResetToken(store, 7, second))
}

func TestResetTokenRejectsWrongValueAndUser(t *testing.T) {
	f := &tokenFixture{tokens: map[uint]*models.ResetToken{}}
	store := f.store()

	value, err := issueResetToken(store, 7)
	require.NoError(t, err)

	assert.False(t, verifyResetToken(store, 7, "not-the-token"))
	assert.False(t, verifyResetToken(store, 8, value))
	assert.True(t, verifyResetToken(store, 7, value))
}

func TestResetTokenExpires(t *testing.T) {
	f := &tokenFixture{tokens: map[uint]*models.ResetToken{}}
	store := f.store()

	value, err := issueResetToken(store, 7)
	require.NoError(t, err)
	f.tokens[7].CreatedAt = time.Now().Add(-models.ResetTokenTTL - time.Minute)

	assert.False(t, verifyResetToken(store, 7, value))
}

func TestResetTokenPurgedAfterUse(t *testing.T) {
	f := &tokenFixture{tokens: map[uint]*models.ResetToken{}}
	store := f.store()

	value, err := issueResetToken(store, 7)
	require.NoError(t, err)
	require.True(t, verifyResetToken(store, 7, value))

	store.purge(7)
	assert.False(t, verifyResetToken(store, 7, value))
}
