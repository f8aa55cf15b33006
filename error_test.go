// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchq

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/fetchq/request"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "server error", KindServerError.String())
	assert.Equal(t, "unknown error", KindUnknown.String())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := &Error{Kind: KindNetworkError, Err: cause}
	assert.ErrorIs(t, err, cause)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{
		Kind:     KindServerError,
		Response: &request.NetworkResponse{StatusCode: 503},
	}
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "server error")
}

func TestErrorTimeout(t *testing.T) {
	assert.True(t, (&Error{Kind: KindTimeout}).Timeout())
	assert.False(t, (&Error{Kind: KindServerError}).Timeout())
}

func TestAsError(t *testing.T) {
	inner := &Error{Kind: KindAuthFailure}
	wrapped := fmt.Errorf("dispatch: %w", inner)
	fe, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, fe)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}
