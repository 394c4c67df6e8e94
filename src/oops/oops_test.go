package oops

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type sampleErrorType struct {
	Message string
}

func (s sampleErrorType) Error() string {
	return s.Message
}

func init() {
	zerolog.ErrorStackMarshaler = ZerologStackMarshaler
}

func TestNew(t *testing.T) {
	t.Run("errors.Is", func(t *testing.T) {
		err := New(io.ErrUnexpectedEOF, "failed to read chunk length")
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
	t.Run("errors.As", func(t *testing.T) {
		err := New(sampleErrorType{Message: "bad chunk"}, "failed to read chunk")
		var sErr sampleErrorType
		assert.True(t, errors.As(err, &sErr))
		assert.Equal(t, "bad chunk", sErr.Message)
	})
	t.Run("message", func(t *testing.T) {
		err := New(io.EOF, "chunk %q", "IDAT")
		assert.Equal(t, `chunk "IDAT": EOF`, err.Error())
		assert.Equal(t, "no wrapped error", New(nil, "no wrapped error").Error())
	})
	t.Run("stack starts at caller", func(t *testing.T) {
		err := New(io.EOF, "test").(*Error)
		if assert.NotEmpty(t, err.Stack) {
			assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestNew.func4"), err.Stack[0].Function)
		}
	})
}

func TestTrace(t *testing.T) {
	s := Trace()
	if assert.NotEmpty(t, s) {
		assert.True(t, strings.HasSuffix(s[0].Function, "TestTrace"), s[0].Function)
	}

	helper := func() CallStack { return TraceFrom(1) }
	s = helper()
	if assert.NotEmpty(t, s) {
		assert.True(t, strings.HasSuffix(s[0].Function, "TestTrace"), s[0].Function)
	}
}
