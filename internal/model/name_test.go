package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName_As_ValidExternal(t *testing.T) {
	for _, s := range []string{"dev", "a", "core-api", "v1.2_rc", "Maintainer", "x234567890123456"} {
		n, err := As(s)
		require.NoError(t, err, "name %q should be valid", s)
		assert.Equal(t, s, n.String())
		assert.True(t, n.IsExternal(), "name %q should be external", s)
		assert.False(t, n.IsInternal())
	}
}

func TestName_As_Invalid(t *testing.T) {
	for _, s := range []string{
		"",
		"1abc",              // must start with a letter
		"-abc",              // must start with a letter
		"has space",         // illegal byte
		"has/slash",         // illegal byte
		"x2345678901234567", // 17 bytes
	} {
		_, err := As(s)
		assert.Error(t, err, "name %q should be rejected", s)
	}
}

func TestName_As_Internal(t *testing.T) {
	origin, err := As("*")
	require.NoError(t, err)
	assert.True(t, origin.IsOrigin())
	assert.True(t, origin.IsInternal())
	assert.False(t, origin.IsExternal())

	unknown, err := As("~")
	require.NoError(t, err)
	assert.True(t, unknown.IsUnknown())
	assert.True(t, unknown.IsInternal())

	email, err := As("jan@example.com")
	require.NoError(t, err)
	assert.True(t, email.IsEmail())
	assert.True(t, email.IsInternal())
	assert.False(t, email.IsExternal())
}

func TestName_As_EmailShapedLength(t *testing.T) {
	long := strings.Repeat("a", 52) + "@example.com" // 64 bytes
	_, err := As(long)
	require.NoError(t, err)

	_, err = As("a" + long) // 65 bytes
	assert.Error(t, err)
}

func TestName_EqualAndCompare(t *testing.T) {
	a := MustName("alpha")
	b := MustName("beta")
	assert.True(t, a.EqualTo(MustName("alpha")))
	assert.False(t, a.EqualTo(b))
	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Zero(t, a.Compare(MustName("alpha")))
}

func TestName_Zero(t *testing.T) {
	var zero Name
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsExternal())
	assert.False(t, zero.IsInternal())
}
