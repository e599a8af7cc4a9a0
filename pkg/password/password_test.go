package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashWithCost("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, Verify("s3cret", hash))
	assert.False(t, Verify("wrong", hash))
	assert.False(t, Verify("s3cret", ""))
	assert.False(t, Verify("s3cret", "not-a-bcrypt-hash"))
}
