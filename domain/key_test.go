package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_EncodeDecodeRoundTrip(t *testing.T) {
	profile := ProfileKey("alice@example.com")
	conf := NewKey(KindConference, 42, profile)
	session := NewKey(KindSession, 7, conf)

	decoded, err := DecodeKey(session.Encode())
	require.NoError(t, err)

	assert.True(t, decoded.Equal(session))
	assert.Equal(t, KindSession, decoded.Kind)
	assert.Equal(t, int64(42), decoded.Parent.ID)
	assert.Equal(t, "alice@example.com", decoded.Root().Name)
	assert.Equal(t, "Profile:n:alice@example.com/Conference:i:42/Session:i:7", session.String())
}

func TestKey_NameWithSlash(t *testing.T) {
	key := ProfileKey("a/b c")

	decoded, err := DecodeKey(key.Encode())
	require.NoError(t, err)
	assert.Equal(t, "a/b c", decoded.Name)
	assert.Nil(t, decoded.Parent)
}

func TestDecodeKey_Invalid(t *testing.T) {
	for _, raw := range []string{"", "!!!", "Q29uZmVyZW5jZQ", "Q29uZmVyZW5jZTppOjA", "Q29uZmVyZW5jZTp4OjE"} {
		_, err := DecodeKey(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrInvalidKey), raw)
	}
}

func TestDecodeKind(t *testing.T) {
	conf := NewKey(KindConference, 1, ProfileKey("u"))

	_, err := DecodeKind(conf.Encode(), KindConference)
	require.NoError(t, err)

	_, err = DecodeKind(conf.Encode(), KindSession)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestKey_Equal(t *testing.T) {
	a := NewKey(KindConference, 1, ProfileKey("u"))
	b := NewKey(KindConference, 1, ProfileKey("u"))
	c := NewKey(KindConference, 1, ProfileKey("v"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(NewKey(KindConference, 1, nil)))
}
