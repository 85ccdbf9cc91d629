package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_SealOpen(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewXChaCha20Poly1305Cipher(key)
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("session-id"), []byte("sid"))
	require.NoError(t, err)
	plain, err := c.Open(sealed, []byte("sid"))
	require.NoError(t, err)
	assert.Equal(t, "session-id", string(plain))

	_, err = c.Open(sealed, []byte("other-cookie"))
	assert.Error(t, err)
	_, err = c.Open("AAAA", []byte("sid"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	again, err := c.Seal([]byte("session-id"), []byte("sid"))
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)
}

func TestParseKey(t *testing.T) {
	hexKey := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	key, err := ParseKey(hexKey)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = ParseKey("short")
	assert.Error(t, err)
	_, err = NewXChaCha20Poly1305Cipher([]byte("short"))
	assert.Error(t, err)
}

func TestHS256Ticket(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	signed, jti, err := IssueHS256Ticket(key, "pledgedesk", "session-1", time.Minute, now)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := ParseHS256Ticket(key, "pledgedesk", signed, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.Subject)
	assert.Equal(t, jti, claims.ID)

	_, err = ParseHS256Ticket(key, "pledgedesk", signed, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = ParseHS256Ticket([]byte("another-key-another-key-another-k"), "pledgedesk", signed, now)
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = ParseHS256Ticket(key, "someone-else", signed, now)
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = ParseHS256Ticket(key, "pledgedesk", "not.a.jwt", now)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestEqualConstantTime(t *testing.T) {
	assert.True(t, EqualConstantTime("ghaith", "ghaith"))
	assert.False(t, EqualConstantTime("ghaith", "ghaith "))
}
