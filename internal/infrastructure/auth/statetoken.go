package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/orris-inc/channelsync/internal/domain/channel"
)

// StateCodec signs the OAuth state parameter so the callback can recover the
// project and user without server-side storage.
//
// Format: base64url_nopad("<projectID>:<userID>:<hex hmac-sha256>").
type StateCodec struct {
	secret []byte
}

func NewStateCodec(secret string) (*StateCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("state secret is required")
	}
	return &StateCodec{secret: []byte(secret)}, nil
}

func (c *StateCodec) Encode(projectID uint, userID string) string {
	payload := strconv.FormatUint(uint64(projectID), 10) + ":" + userID
	raw := payload + ":" + c.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode verifies state and returns its project and user. Every failure wraps
// channel.ErrInvalidState.
func (c *StateCodec) Decode(state string) (uint, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return 0, "", fmt.Errorf("%w: malformed encoding", channel.ErrInvalidState)
	}

	s := string(raw)
	first := strings.IndexByte(s, ':')
	last := strings.LastIndexByte(s, ':')
	if first <= 0 || last <= first {
		return 0, "", fmt.Errorf("%w: malformed payload", channel.ErrInvalidState)
	}

	payload, sig := s[:last], s[last+1:]
	expected := c.sign(payload)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return 0, "", fmt.Errorf("%w: signature mismatch", channel.ErrInvalidState)
	}

	projectID, err := strconv.ParseUint(s[:first], 10, 64)
	if err != nil || projectID == 0 {
		return 0, "", fmt.Errorf("%w: bad project id", channel.ErrInvalidState)
	}
	userID := s[first+1 : last]
	if userID == "" {
		return 0, "", fmt.Errorf("%w: empty user id", channel.ErrInvalidState)
	}

	return uint(projectID), userID, nil
}

func (c *StateCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
