package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetString(t *testing.T) {
	t.Setenv("PNCP_TEST_STRING", "value")

	assert.Equal(t, "value", GetString("PNCP_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", GetString("PNCP_TEST_STRING_MISSING", "fallback"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("PNCP_TEST_INT", "42")
	t.Setenv("PNCP_TEST_INT_BAD", "forty-two")

	assert.Equal(t, 42, GetInt("PNCP_TEST_INT", 1))
	assert.Equal(t, 1, GetInt("PNCP_TEST_INT_BAD", 1))
	assert.Equal(t, 1, GetInt("PNCP_TEST_INT_MISSING", 1))
}

func TestGetBool(t *testing.T) {
	t.Setenv("PNCP_TEST_BOOL", "true")
	t.Setenv("PNCP_TEST_BOOL_BAD", "yes please")

	assert.True(t, GetBool("PNCP_TEST_BOOL", false))
	assert.False(t, GetBool("PNCP_TEST_BOOL_BAD", false))
}

func TestGetDuration(t *testing.T) {
	t.Setenv("PNCP_TEST_DURATION", "250ms")
	t.Setenv("PNCP_TEST_DURATION_BAD", "soon")

	assert.Equal(t, 250*time.Millisecond, GetDuration("PNCP_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetDuration("PNCP_TEST_DURATION_BAD", time.Second))
}

func TestGetIntSlice(t *testing.T) {
	fallback := []int{6}

	t.Setenv("PNCP_TEST_CODES", "6, 4,8")
	assert.Equal(t, []int{6, 4, 8}, GetIntSlice("PNCP_TEST_CODES", fallback))

	t.Setenv("PNCP_TEST_CODES_BAD", "6,x,8")
	assert.Equal(t, fallback, GetIntSlice("PNCP_TEST_CODES_BAD", fallback))

	t.Setenv("PNCP_TEST_CODES_EMPTY", " ")
	assert.Equal(t, fallback, GetIntSlice("PNCP_TEST_CODES_EMPTY", fallback))
}
