package diagnostics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wybec/wybe/internal/errors"
	"github.com/wybec/wybe/internal/ident"
)

func TestBufferErrorSeen(t *testing.T) {
	b := NewBuffer()
	require.False(t, b.ErrorSeen())

	b.Emit(errors.New(errors.RES001, "unknown identifier 'foo'", ident.UnknownPos))
	require.True(t, b.ErrorSeen())
}

func TestBufferWarningDoesNotSetErrorSeen(t *testing.T) {
	b := NewBuffer()
	warn := errors.New(errors.RES001, "shadowed binding", ident.UnknownPos)
	warn.Severity = errors.SeverityWarning
	b.Emit(warn)
	require.False(t, b.ErrorSeen())
}

func TestFlushExitCode(t *testing.T) {
	b := NewBuffer()
	var buf bytes.Buffer
	require.Equal(t, 0, b.Flush(&buf))

	b.Emit(errors.New(errors.TYP001, "type mismatch", ident.UnknownPos))
	var buf2 bytes.Buffer
	require.Equal(t, 1, b.Flush(&buf2))
	require.Contains(t, buf2.String(), "TYP001")
}

func TestFatalOnInternal(t *testing.T) {
	ice := errors.Internal(errors.ICE001, "fork inside unsealed fork", ident.UnknownPos)
	require.True(t, Fatal(ice))
	ordinary := errors.New(errors.RES001, "x", ident.UnknownPos)
	require.False(t, Fatal(ordinary))
}
