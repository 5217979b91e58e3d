package auth

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/channelsync/internal/domain/channel"
)

func newTestCodec(t *testing.T, secret string) *StateCodec {
	t.Helper()
	c, err := NewStateCodec(secret)
	require.NoError(t, err)
	return c
}

func TestNewStateCodec_RequiresSecret(t *testing.T) {
	_, err := NewStateCodec("")
	assert.Error(t, err)
}

func TestStateCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t, "s3cret")

	tests := []struct {
		projectID uint
		userID    string
	}{
		{1, "user-1"},
		{4294967295, "3f1c9f0e-8f8b-4c57-a1e7-0f3d7f4b2f4e"},
		{42, "auth0|abc:def"},
	}

	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			state := codec.Encode(tt.projectID, tt.userID)
			assert.NotContains(t, state, "=")
			assert.NotContains(t, state, "+")
			assert.NotContains(t, state, "/")

			pid, uid, err := codec.Decode(state)
			require.NoError(t, err)
			assert.Equal(t, tt.projectID, pid)
			assert.Equal(t, tt.userID, uid)
		})
	}
}

func TestStateCodec_RejectsTampering(t *testing.T) {
	codec := newTestCodec(t, "s3cret")
	state := codec.Encode(7, "alice")

	raw, err := base64.RawURLEncoding.DecodeString(state)
	require.NoError(t, err)
	parts := strings.Split(string(raw), ":")
	require.Len(t, parts, 3)

	forge := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name  string
		state string
	}{
		{name: "other project", state: forge("8:alice:" + parts[2])},
		{name: "other user", state: forge("7:mallory:" + parts[2])},
		{name: "truncated signature", state: forge("7:alice:" + parts[2][:10])},
		{name: "flipped byte", state: state[:len(state)-2] + flip(state[len(state)-2]) + state[len(state)-1:]},
		{name: "not base64", state: "!!!not-base64!!!"},
		{name: "missing parts", state: forge("7alice")},
		{name: "empty", state: ""},
		{name: "empty user", state: forge("7::" + parts[2])},
		{name: "other secret", state: newTestCodec(t, "different").Encode(7, "alice")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := codec.Decode(tt.state)
			assert.ErrorIs(t, err, channel.ErrInvalidState)
		})
	}
}

func flip(b byte) string {
	if b == 'A' {
		return "B"
	}
	return "A"
}
