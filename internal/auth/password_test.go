package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, h.Compare(hash, "s3cret-pass"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)

	again, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")

	h.CompareDummy("anything")
}

func TestPasswordHasher_InvalidHash(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	err = h.Compare("not-a-bcrypt-hash", "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestPasswordHasher_ByteLimit(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	atLimit := strings.Repeat("é", MaxPasswordBytes/2)
	hash, err := h.Hash(atLimit)
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, atLimit))

	_, err = h.Hash(atLimit + "x")
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// bcrypt ignores bytes past the limit, so a longer input must not match.
	assert.ErrorIs(t, h.Compare(hash, atLimit+"x"), ErrPasswordMismatch)
}
