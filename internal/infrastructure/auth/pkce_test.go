package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGeneratePKCE(t *testing.T) {
	verifier, challenge, err := GeneratePKCE()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(verifier)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Len(t, verifier, 43)

	assert.Equal(t, ChallengeFromVerifier(verifier), challenge)
	assert.Equal(t, oauth2.S256ChallengeFromVerifier(verifier), challenge)

	other, _, err := GeneratePKCE()
	require.NoError(t, err)
	assert.NotEqual(t, verifier, other)
}

func TestChallengeFromVerifier_KnownVector(t *testing.T) {
	// RFC 7636 appendix B
	assert.Equal(t,
		"E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		ChallengeFromVerifier("dBjftJeZ4CVP-mB92K3uhbMR7cZ7pRdmxV3Yz8QaT-8"),
	)
}
