package correrr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindPredicates(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"invalid", InvalidInput("manifest missing"), IsInvalidInput},
		{"transient", Transient(errors.New("dial tcp: timeout")), IsTransient},
		{"integrity", Integrity("chunk-123", errors.New("hash mismatch")), IsIntegrity},
		{"timeout", Timeout(errors.New("deadline exceeded")), IsTimeout},
		{"partial", Partial(errors.New("3 files failed")), IsPartial},
		{"notfound", NotFound("job-9", errors.New("no such job")), IsNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.is(tc.err))
		})
	}
}

func TestWrappedErrorPreservesKind(t *testing.T) {
	base := Integrity("chunk-42", errors.New("differing content hash"))
	wrapped := fmt.Errorf("upsert_batch: %w", base)
	require.True(t, IsIntegrity(wrapped))
	require.False(t, IsTransient(wrapped))

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "chunk-42", e.Subject)
}
