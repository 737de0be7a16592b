package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(CodecConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    168 * time.Hour,
	})
	require.NoError(t, err)
	return c
}

func TestNewCodec_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  CodecConfig
	}{
		{"missing access secret", CodecConfig{RefreshSecret: "r", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"missing refresh secret", CodecConfig{AccessSecret: "a", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"shared secret", CodecConfig{AccessSecret: "same", RefreshSecret: "same", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"zero access ttl", CodecConfig{AccessSecret: "a", RefreshSecret: "r", RefreshTTL: time.Hour}},
		{"zero refresh ttl", CodecConfig{AccessSecret: "a", RefreshSecret: "r", AccessTTL: time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodec(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestCodec_MintAndVerify(t *testing.T) {
	c := newTestCodec(t)

	signed, minted, err := c.Mint("user-1", ClassAccess)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.Equal(t, "user-1", minted.Subject)
	assert.Equal(t, ClassAccess, minted.Class)
	assert.NotEmpty(t, minted.ID)
	assert.True(t, minted.ExpiresAt.After(minted.IssuedAt))

	tok, err := c.Verify(signed, ClassAccess)
	require.NoError(t, err)
	assert.Equal(t, minted.Subject, tok.Subject)
	assert.Equal(t, minted.ID, tok.ID)
	assert.Equal(t, ClassAccess, tok.Class)
}

func TestCodec_MintedTokensCarryFreshJTIs(t *testing.T) {
	c := newTestCodec(t)

	_, t1, err := c.Mint("user-1", ClassRefresh)
	require.NoError(t, err)
	_, t2, err := c.Mint("user-1", ClassRefresh)
	require.NoError(t, err)

	assert.NotEqual(t, t1.ID, t2.ID)
}

func TestCodec_WrongClass(t *testing.T) {
	c := newTestCodec(t)

	access, _, err := c.Mint("user-1", ClassAccess)
	require.NoError(t, err)
	refresh, _, err := c.Mint("user-1", ClassRefresh)
	require.NoError(t, err)

	_, err = c.Verify(access, ClassRefresh)
	assert.ErrorIs(t, err, ErrWrongClass)

	_, err = c.Verify(refresh, ClassAccess)
	assert.ErrorIs(t, err, ErrWrongClass)
}

func TestCodec_Expiry(t *testing.T) {
	c := newTestCodec(t)

	start := time.Now().UTC()
	c.now = func() time.Time { return start }

	signed, minted, err := c.Mint("user-1", ClassAccess)
	require.NoError(t, err)

	// One second before expiry the token is still good.
	c.now = func() time.Time { return minted.ExpiresAt.Add(-time.Second) }
	_, err = c.Verify(signed, ClassAccess)
	assert.NoError(t, err)

	// At/after expiry it is rejected.
	c.now = func() time.Time { return minted.ExpiresAt.Add(time.Second) }
	_, err = c.Verify(signed, ClassAccess)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_ExpiryLeeway(t *testing.T) {
	c, err := NewCodec(CodecConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    168 * time.Hour,
		Leeway:        30 * time.Second,
	})
	require.NoError(t, err)

	start := time.Now().UTC()
	c.now = func() time.Time { return start }

	signed, minted, err := c.Mint("user-1", ClassAccess)
	require.NoError(t, err)

	// Within leeway past expiry still verifies.
	c.now = func() time.Time { return minted.ExpiresAt.Add(10 * time.Second) }
	_, err = c.Verify(signed, ClassAccess)
	assert.NoError(t, err)

	// Beyond leeway it does not.
	c.now = func() time.Time { return minted.ExpiresAt.Add(time.Minute) }
	_, err = c.Verify(signed, ClassAccess)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_BadSignature(t *testing.T) {
	c := newTestCodec(t)

	other, err := NewCodec(CodecConfig{
		AccessSecret:  "a-completely-different-access-secret",
		RefreshSecret: "a-completely-different-refresh-secret",
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    168 * time.Hour,
	})
	require.NoError(t, err)

	signed, _, err := other.Mint("user-1", ClassAccess)
	require.NoError(t, err)

	_, err = c.Verify(signed, ClassAccess)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestCodec_Malformed(t *testing.T) {
	c := newTestCodec(t)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := c.Verify(raw, ClassAccess)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestToken_Remaining(t *testing.T) {
	now := time.Now().UTC()
	tok := &Token{ExpiresAt: now.Add(10 * time.Minute)}

	assert.Equal(t, 10*time.Minute, tok.Remaining(now))
	assert.LessOrEqual(t, tok.Remaining(now.Add(11*time.Minute)), time.Duration(0))
}
