package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf("error: %s %d", "test", 42)
	require.NotNil(t, err)
	assert.Equal(t, "error: test 42", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrNoSourceCode, "source %s", "WIKT_EN")

	assert.True(t, Is(err, ErrNoSourceCode))
	assert.False(t, Is(err, ErrNotFound))
}

func TestIs(t *testing.T) {
	err1 := New("error 1")
	err2 := New("error 2")
	wrapped := Wrap(err1, "wrapped")

	assert.True(t, Is(wrapped, err1))
	assert.False(t, Is(wrapped, err2))
	assert.False(t, Is(nil, err1))
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}

func TestAs(t *testing.T) {
	original := &customError{msg: "custom"}
	wrapped := Wrap(original, "wrapped")

	var target *customError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "custom", target.msg)
}

func TestIsNotFoundError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.False(t, IsNotFoundError(nil))
	})

	t.Run("sentinel", func(t *testing.T) {
		assert.True(t, IsNotFoundError(ErrNotFound))
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := Wrap(ErrNotFound, "looking up word")
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		assert.False(t, IsNotFoundError(New("boom")))
	})
}

func TestIsTimeoutError(t *testing.T) {
	assert.True(t, IsTimeoutError(Wrap(ErrTimeout, "finalize")))
	assert.False(t, IsTimeoutError(New("boom")))
	assert.False(t, IsTimeoutError(nil))
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("word %q missing", "lexeme")

	assert.True(t, Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), `word "lexeme" missing`)
}

func TestStackTracePresent(t *testing.T) {
	err := New("with stack")
	assert.NotNil(t, GetStack(err))
}
