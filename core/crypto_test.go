package core_test

import (
	"strings"
	"testing"

	"github.com/playi/play-silhouette/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEncryptionKey = "12345678901234567890123456789012"

func TestNewCryptoService_RejectsShortKey(t *testing.T) {
	_, err := core.NewCryptoService("too-short")
	assert.ErrorIs(t, err, core.ErrInvalidEncryptionKey)
}

func TestEncryptDecryptToken_RoundTrip(t *testing.T) {
	cs, err := core.NewCryptoService(testEncryptionKey)
	require.NoError(t, err)

	ciphertext, err := cs.EncryptToken("provider_refresh_token")
	require.NoError(t, err)
	assert.NotEqual(t, "provider_refresh_token", ciphertext)

	plaintext, err := cs.DecryptToken(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "provider_refresh_token", plaintext)
}

func TestDecryptToken_RejectsGarbage(t *testing.T) {
	cs, err := core.NewCryptoService(testEncryptionKey)
	require.NoError(t, err)

	_, err = cs.DecryptToken("bm90LWEtY2lwaGVydGV4dA")
	assert.Error(t, err)
}

func TestHashToken_Verify(t *testing.T) {
	cs, err := core.NewCryptoService(testEncryptionKey)
	require.NoError(t, err)

	hash, err := cs.HashToken("secret_key_part")
	require.NoError(t, err)

	assert.True(t, cs.VerifyTokenHash("secret_key_part", hash))
	assert.False(t, cs.VerifyTokenHash("wrong_key_part", hash))
}

func TestGenerateRefreshToken_ParsesBack(t *testing.T) {
	fullToken, parts, err := core.GenerateRefreshToken()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fullToken, "SLRT_"))

	parsed, err := core.ParseRefreshToken(fullToken)
	require.NoError(t, err)
	assert.Equal(t, parts.ID, parsed.ID)
	assert.Equal(t, parts.Key, parsed.Key)
}

func TestParseRefreshToken_Invalid(t *testing.T) {
	for _, token := range []string{
		"",
		"OTHER_abc.def",
		"SLRT_missing-separator",
		"SLRT_.keyonly",
		"SLRT_idonly.",
	} {
		_, err := core.ParseRefreshToken(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestGravatarURL_FixedDigest(t *testing.T) {
	// The digest is deterministic: no dependency on environment or time.
	assert.Equal(t,
		"https://secure.gravatar.com/avatar/3e3417d7ef77d5932a6734b916515ed5",
		core.GravatarURL("ada@example.com"))
}

func TestGravatarURL_NormalizesInput(t *testing.T) {
	assert.Equal(t, core.GravatarURL("ada@example.com"), core.GravatarURL("  Ada@Example.COM "))
}
