package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFGuard_VerifyOwnHash(t *testing.T) {
	g, err := NewCSRFGuard(testSecret)
	require.NoError(t, err)

	tok, err := g.Generate()
	require.NoError(t, err)
	assert.True(t, g.Verify(tok, g.Hash(tok)))
}

func TestCSRFGuard_IndependentTokensDoNotMatch(t *testing.T) {
	g, err := NewCSRFGuard(testSecret)
	require.NoError(t, err)

	a, err := g.Generate()
	require.NoError(t, err)
	b, err := g.Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.False(t, g.Verify(a, g.Hash(b)))
}

func TestCSRFGuard_HashBoundToSecret(t *testing.T) {
	g1, err := NewCSRFGuard(testSecret)
	require.NoError(t, err)
	g2, err := NewCSRFGuard([]byte("some-other-secret"))
	require.NoError(t, err)

	tok, err := g1.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, g1.Hash(tok), g2.Hash(tok))
	assert.False(t, g2.Verify(tok, g1.Hash(tok)))
}

func TestCSRFGuard_EmptyInputs(t *testing.T) {
	g, err := NewCSRFGuard(testSecret)
	require.NoError(t, err)

	assert.False(t, g.Verify("", g.Hash("")))
	assert.False(t, g.Verify("token", ""))

	_, err = NewCSRFGuard(nil)
	assert.Error(t, err)
}
