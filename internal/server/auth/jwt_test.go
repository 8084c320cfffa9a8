package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSignAndVerify_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCodec([]byte("super-secret"), time.Hour, WithClock(fixedClock(now)))

	tok, exp, err := c.Sign("user-123", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := c.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, now, claims.IssuedAt.Time.UTC())
	assert.Equal(t, exp, claims.ExpiresAt.Time.UTC())
	assert.NotEmpty(t, claims.ID)
}

func TestSign_PayloadFieldNames(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("k"), time.Minute)
	tok, _, err := c.Sign("u1", "e@x.com")
	require.NoError(t, err)

	m := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, m)
	require.NoError(t, err)
	assert.Equal(t, "u1", m["userId"])
	assert.Equal(t, "e@x.com", m["email"])
	assert.Contains(t, m, "iat")
	assert.Contains(t, m, "exp")
}

func TestSignAt_TruncatesToSeconds(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("k"), 7*24*time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 999_000_000, time.UTC)

	tok, exp, err := c.SignAt("u", "e", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC), exp)

	m := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, m)
	require.NoError(t, err)
	gotExp, err := m.GetExpirationTime()
	require.NoError(t, err)
	assert.True(t, gotExp.Time.Equal(exp), "jwt exp and returned expiry must agree")
}

func TestSign_SameInstantGivesDistinctTokens(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := NewCodec([]byte("k"), time.Hour, WithClock(fixedClock(now)))

	a, _, err := c.Sign("u", "e")
	require.NoError(t, err)
	b, _, err := c.Sign("u", "e")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	signer := NewCodec([]byte("secret"), time.Minute, WithClock(fixedClock(issued)))
	tok, _, err := signer.Sign("u1", "e")
	require.NoError(t, err)

	verifier := NewCodec([]byte("secret"), time.Minute, WithClock(fixedClock(issued.Add(2*time.Minute))))
	_, err = verifier.Verify(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTokenExpired))
	assert.False(t, errors.Is(err, common.ErrTokenMalformed))
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewCodec([]byte("right-secret"), time.Hour).Sign("u2", "e")
	require.NoError(t, err)

	_, err = NewCodec([]byte("wrong-secret"), time.Hour).Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
}

func TestVerify_AccessAndRefreshDomainsAreIndependent(t *testing.T) {
	t.Parallel()

	access := NewCodec([]byte("access"), time.Minute)
	refresh := NewCodec([]byte("refresh"), time.Hour)

	rt, _, err := refresh.Sign("u", "e")
	require.NoError(t, err)

	_, err = access.Verify(rt)
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("k"), time.Hour)
	for _, s := range []string{"", "not.a.jwt", "abc", strings.Repeat("x", 40)} {
		_, err := c.Verify(s)
		assert.ErrorIs(t, err, common.ErrTokenMalformed, "input %q", s)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           "u",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewCodec([]byte("k"), time.Hour).Verify(s)
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
}

func TestVerify_MissingExpiryOrSubject(t *testing.T) {
	t.Parallel()

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = NewCodec([]byte("k"), time.Hour).Verify(noExp)
	assert.ErrorIs(t, err, common.ErrTokenMalformed)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = NewCodec([]byte("k"), time.Hour).Verify(noSub)
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
}
