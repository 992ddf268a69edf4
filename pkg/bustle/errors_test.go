package bustle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngineFailureUnwraps(t *testing.T) {
	cause := errors.New("boom")
	ef := &EngineFailure{ThreadID: 3, Cause: cause}
	require.ErrorIs(t, ef, cause)
}

func TestResourceFailureUnwraps(t *testing.T) {
	cause := errors.New("no entropy")
	rf := &ResourceFailure{Stage: "seed derivation", Cause: cause}
	require.ErrorIs(t, rf, cause)
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "threads", Message: "must be >= 1"}
	require.Contains(t, err.Error(), "threads")
	require.Contains(t, err.Error(), "must be >= 1")
}
