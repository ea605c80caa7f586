package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sugvoyage-backend/internal/models"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: uuid.New(), Username: "maria"}

	token, err := tm.Generate(user)
	require.NoError(t, err)

	id, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestTokenManager_RejectsForeignAndExpiredTokens(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: uuid.New(), Username: "maria"}

	token, err := tm.Generate(user)
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", time.Hour).Parse(token)
	assert.Error(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tm.Parse(token)
	assert.Error(t, err)

	_, err = tm.Parse("not-a-token")
	assert.Error(t, err)
}
