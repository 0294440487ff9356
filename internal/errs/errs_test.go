package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(KindMalformedInput, "row %d is bad", 3)
	assert.Equal(t, "malformed input: row 3 is bad", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestWrap(t *testing.T) {
	err := Wrap(KindInputAccess, io.ErrUnexpectedEOF, "open %s", "x.csv")
	assert.Equal(t, "input access: open x.csv: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestIsKind(t *testing.T) {
	err := New(KindSchemaViolation, "missing column")

	assert.True(t, IsKind(err, KindSchemaViolation))
	assert.False(t, IsKind(err, KindMalformedInput))
	assert.False(t, IsKind(nil, KindSchemaViolation))
	assert.False(t, IsKind(errors.New("plain"), KindSchemaViolation))

	t.Run("detected through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", err)
		assert.True(t, IsKind(wrapped, KindSchemaViolation))
	})
}
