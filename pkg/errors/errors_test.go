// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"hook missing", errors.CodeHookNotConfigured, "skeleton hash hook is not configured"},
		{"invalid param", errors.CodeInvalidParam, "molfile must not be empty"},
		{"unsupported version", errors.ErrCodeUnsupportedVersion, "V4000 is not a molfile version"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeMolfileFormat, "invalid molfile")
	assert.Equal(t, "[MOL_101] invalid molfile", ae.Error())

	withDetail := ae.WithDetail("line 4: truncated atom record")
	assert.Equal(t, "[MOL_101] invalid molfile: line 4: truncated atom record", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(fmt.Errorf("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	ae := errors.Wrap(root, errors.ErrCodeMoleculeSourceError, "fetch molfile")

	require.NotNil(t, ae)
	assert.True(t, stderrors.Is(ae, root))
	assert.Equal(t, root, stderrors.Unwrap(ae))
}

func TestWrap_UnknownCodeInheritsInner(t *testing.T) {
	t.Parallel()

	inner := errors.Format(7, "bad bond record")
	outer := errors.Wrap(inner, errors.CodeUnknown, "parse failed")

	assert.Equal(t, errors.CodeMolfileFormat, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Molfile error kinds
// ─────────────────────────────────────────────────────────────────────────────

func TestFormat_CarriesLine(t *testing.T) {
	t.Parallel()

	err := errors.Formatf(12, "bond references atom %d of %d", 9, 8)

	require.NotNil(t, err)
	assert.True(t, errors.IsFormat(err))
	assert.False(t, errors.IsConfiguration(err))

	fe, ok := errors.AsFormatError(err)
	require.True(t, ok)
	assert.Equal(t, 12, fe.Line)
	assert.Equal(t, "bond references atom 9 of 8", fe.Reason)
	assert.Contains(t, err.Error(), "line 12")
}

func TestFormat_SurvivesWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("sdf record 3: %w", errors.Format(2, "premature end of input"))

	assert.True(t, errors.IsFormat(err))
	fe, ok := errors.AsFormatError(err)
	require.True(t, ok)
	assert.Equal(t, 2, fe.Line)
}

func TestFormatError_NoLine(t *testing.T) {
	t.Parallel()

	fe := &errors.FormatError{Reason: "empty input"}
	assert.Equal(t, "empty input", fe.Error())
}

func TestHookNotConfigured(t *testing.T) {
	t.Parallel()

	err := errors.HookNotConfigured("hash")
	assert.True(t, errors.IsConfiguration(err))
	assert.Equal(t, "hook=hash", err.Detail)
	assert.False(t, errors.IsValidation(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(errors.NotFound("object missing")))
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.InvalidParam("molfile is required")))
	assert.True(t, errors.IsValidation(errors.Format(1, "x")))
	assert.False(t, errors.IsValidation(errors.Internal("boom")))
	assert.True(t, errors.IsNotFound(errors.NotFound("gone")))
}

//Personal.AI order the ending
