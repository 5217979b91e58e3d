package auth

import (
	"golang.org/x/oauth2"
)

// GeneratePKCE returns an S256 code verifier and its challenge. It matches
// usecases.PKCEGenerator, whose error result stays for generators that can fail.
func GeneratePKCE() (codeVerifier, codeChallenge string, err error) {
	codeVerifier = oauth2.GenerateVerifier()
	return codeVerifier, ChallengeFromVerifier(codeVerifier), nil
}

func ChallengeFromVerifier(codeVerifier string) string {
	return oauth2.S256ChallengeFromVerifier(codeVerifier)
}
