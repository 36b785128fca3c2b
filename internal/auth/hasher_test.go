package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	secrets := []string{"pw1", "supersecret", "", "ünïcødé", strings.Repeat("k", 72)}
	for _, secret := range secrets {
		digest, err := h.Hash(secret)
		require.NoError(t, err)
		assert.NotEqual(t, secret, digest)
		assert.True(t, h.Verify(secret, digest), "secret %q should verify", secret)
	}
}

func TestHasher_DifferentSecretsDoNotVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("secret-one")
	require.NoError(t, err)

	assert.False(t, h.Verify("secret-two", digest))
	assert.False(t, h.Verify("secret-on", digest))
	assert.False(t, h.Verify("", digest))
}

func TestHasher_Salted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasher_MalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("secret", ""))
	assert.False(t, h.Verify("secret", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("secret", "$2a$04$short"))
}

func TestHasher_RejectsLongSecret(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrSecretTooLong)
}

func TestNewHasher_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).cost)
}
