package builtin

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Call(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 5, 1, 14, 30, 22, 0, time.UTC) }
	r := NewRegistry().WithClock(clock)

	tests := []struct {
		expr string
		want any
	}{
		{"now()", "2024-05-01T14:30:22Z"},
		{"timestamp()", clock().Unix()},
		{"date()", "2024-05-01"},
		{"date('150405')", "143022"},
		{"base64('user:pass')", "dXNlcjpwYXNz"},
		{"random(7, 7)", 7},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok, err := r.Call(tt.expr)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_UUID(t *testing.T) {
	got, ok, err := NewRegistry().Call("uuid()")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = uuid.Parse(got.(string))
	assert.NoError(t, err)
}

func TestRegistry_RandomLengths(t *testing.T) {
	r := NewRegistry()

	got, _, err := r.Call("randomDigits(4)")
	require.NoError(t, err)
	assert.Len(t, got, 4)
	_, err = strconv.Atoi(got.(string))
	assert.NoError(t, err)

	got, _, err = r.Call("randomString()")
	require.NoError(t, err)
	assert.Len(t, got, 16)
}

func TestRegistry_Env(t *testing.T) {
	t.Setenv("AUTHPROBE_TEST_VALUE", "from-env")
	r := NewRegistry()

	got, _, _ := r.Call("env(AUTHPROBE_TEST_VALUE)")
	assert.Equal(t, "from-env", got)

	got, _, _ = r.Call("env(AUTHPROBE_TEST_MISSING, fallback)")
	assert.Equal(t, "fallback", got)
}

func TestRegistry_NotACall(t *testing.T) {
	r := NewRegistry()

	for _, expr := range []string{"uuid", "unknown()", "token"} {
		_, ok, err := r.Call(expr)
		assert.False(t, ok, expr)
		assert.NoError(t, err)
	}
}

func TestRegistry_BadArguments(t *testing.T) {
	_, ok, err := NewRegistry().Call("random(a, 10)")
	assert.True(t, ok)
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "random", callErr.Name)
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "b, c", "d"}, parseArgs(`a, "b, c", 'd'`))
	assert.Nil(t, parseArgs(""))
}
