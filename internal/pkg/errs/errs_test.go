package errs_test

import (
	"errors"
	"testing"

	"stock-hold-service/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory(t *testing.T) {
	errThing := errs.Category("thing missing", errs.ErrNotFound)

	t.Run("marked sentinel matches its category", func(t *testing.T) {
		assert.True(t, errs.Is(errThing, errs.ErrNotFound))
		assert.False(t, errs.Is(errThing, errs.ErrInvalidState))
	})

	t.Run("wrapping keeps identity and category", func(t *testing.T) {
		wrapped := errs.Wrap(errThing, "loading thing")
		assert.True(t, errs.Is(wrapped, errThing))
		assert.True(t, errs.Is(wrapped, errs.ErrNotFound))
		assert.ErrorIs(t, wrapped, errThing)
		assert.Contains(t, wrapped.Error(), "thing missing")
	})

	t.Run("plain errors carry no category", func(t *testing.T) {
		assert.False(t, errs.Is(errors.New("boom"), errs.ErrNotFound))
	})
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, errs.Wrap(nil, "ignored"))
	require.NoError(t, errs.Wrapf(nil, "ignored %d", 1))
}

func TestExtractStackLines(t *testing.T) {
	lines := errs.ExtractStackLines(errs.New("boom"), 3)
	require.LessOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "boom")
	assert.Nil(t, errs.ExtractStackLines(nil, 3))
}
