package utils_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vinora/internal/utils"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := utils.GenerateToken(testSecret, userID, time.Hour)
	require.NoError(t, err)

	parsedID, scope, err := utils.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, utils.ScopeSession, scope)
}

func TestScopedToken(t *testing.T) {
	userID := uuid.New()

	token, err := utils.GenerateScopedToken(testSecret, userID, utils.ScopeTwoFactor, 5*time.Minute)
	require.NoError(t, err)

	parsedID, scope, err := utils.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, utils.ScopeTwoFactor, scope)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, uuid.New(), time.Hour)
	require.NoError(t, err)

	_, _, err = utils.ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, _, err = utils.ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestPagination(t *testing.T) {
	pg := utils.NewPagination("3", "10")
	assert.Equal(t, 3, pg.Page)
	assert.Equal(t, 10, pg.Limit)
	assert.Equal(t, 20, pg.Offset)

	// Defaults and bad input.
	pg = utils.NewPagination("", "")
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 20, pg.Limit)
	assert.Equal(t, 0, pg.Offset)

	pg = utils.NewPagination("-2", "0")
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 20, pg.Limit)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, utils.CheckPassword(hash, "s3cret-pass"))
	assert.False(t, utils.CheckPassword(hash, "wrong"))
}
