package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrKindNotFound, "row missing")
	assert.Equal(t, "[not_found] row missing", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTimeout(err))
}

func TestNewf(t *testing.T) {
	err := Newf(ErrKindDuplicateName, "database %q already exists", "analytics")
	assert.Contains(t, err.Error(), `database "analytics" already exists`)
	assert.True(t, IsDuplicateName(err))
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrKindQueryFailed, "insert failed", cause)

	require.True(t, IsQueryFailed(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert failed")
	assert.Contains(t, err.Error(), "disk full")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrKind
	}{
		{"nil", nil, ErrKindUnknown},
		{"plain error", errors.New("boom"), ErrKindUnknown},
		{"tagged", New(ErrKindCycleDetected, "cycle"), ErrKindCycleDetected},
		{"wrapped tagged", fmt.Errorf("outer: %w", New(ErrKindProtectedDefault, "no")), ErrKindProtectedDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPredicates_WrappedChain(t *testing.T) {
	inner := New(ErrKindAlreadyPopulated, "table has rows")
	outer := fmt.Errorf("import: %w", inner)

	assert.True(t, IsAlreadyPopulated(outer))
	assert.False(t, IsAlreadyPopulated(errors.New("unrelated")))
	assert.False(t, IsAlreadyPopulated(nil))
}
