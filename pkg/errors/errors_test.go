package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesStack(t *testing.T) {
	err := New(ErrorTypeValidation, "tag must not be empty")

	require.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Stack[0].Function, "TestNewCapturesStack")
	assert.Equal(t, "validation: tag must not be empty", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeDuplicatePool, "pool %q already exists", "bullet")
	assert.Equal(t, `duplicate_pool: pool "bullet" already exists`, err.Error())
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeGrowth, "no prototype")
	outer := Wrap(inner, ErrorTypeInternal, "spawn")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, stderrors.Is(outer, inner))
	assert.Equal(t, "internal: spawn: growth_failed: no prototype", outer.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestIsTypeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("context: %w", New(ErrorTypeContract, "unknown pool"))

	assert.True(t, IsType(err, ErrorTypeContract))
	assert.False(t, IsType(err, ErrorTypeUnknownPool))
	assert.Equal(t, ErrorTypeContract, TypeOf(err))
	assert.Equal(t, ErrorTypeInternal, TypeOf(stderrors.New("plain")))
}

func TestIsRecoverable(t *testing.T) {
	cases := map[ErrorType]bool{
		ErrorTypeUnknownPool:        true,
		ErrorTypeDoubleRelease:      true,
		ErrorTypeAmbiguousPrototype: true,
		ErrorTypeGrowth:             true,
		ErrorTypeContract:           false,
		ErrorTypeDuplicatePool:      false,
		ErrorTypeValidation:         false,
	}
	for typ, want := range cases {
		assert.Equal(t, want, IsRecoverable(New(typ, "x")), string(typ))
	}
	assert.False(t, IsRecoverable(stderrors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeDoubleRelease, "already idle").
		WithDetail("tag", "bullet").
		WithDetail("available", 3)

	assert.Equal(t, "bullet", err.Details["tag"])
	assert.Equal(t, 3, err.Details["available"])
}
