package env

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Default(t *testing.T) {
	assert.Equal(t, "fallback", Get("ALERTS_TEST_UNSET", "fallback", ParseNonEmptyString))
}

func TestGet_InvalidFallsBack(t *testing.T) {
	t.Setenv("ALERTS_TEST_BOOL", "maybe")
	assert.True(t, Get("ALERTS_TEST_BOOL", true, ParseBool))
}

func TestGet_Parsed(t *testing.T) {
	t.Setenv("ALERTS_TEST_BOOL", "false")
	assert.False(t, Get("ALERTS_TEST_BOOL", true, ParseBool))
}

func TestGetRequired_Missing(t *testing.T) {
	_, err := GetRequired("ALERTS_TEST_UNSET", ParseString)
	require.Error(t, err)

	assert.True(t, IsMissing(err))
	assert.Contains(t, err.Error(), "ALERTS_TEST_UNSET")

	var envErr *Error
	require.True(t, errors.As(err, &envErr))
	assert.Equal(t, "ALERTS_TEST_UNSET", envErr.Key)
}

func TestGetRequired_ParseError(t *testing.T) {
	t.Setenv("ALERTS_TEST_STACK", "")

	_, err := GetRequired("ALERTS_TEST_STACK", ParseNonEmptyString)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParsing))
	assert.False(t, IsMissing(err))
}

func TestGetRequired_OK(t *testing.T) {
	t.Setenv("ALERTS_TEST_STACK", "shop-dev")

	got, err := GetRequired("ALERTS_TEST_STACK", ParseNonEmptyString)
	require.NoError(t, err)
	assert.Equal(t, "shop-dev", got)
}
