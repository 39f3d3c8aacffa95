package modal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/planner-web/internal/model"
)

func TestController_CreateFlow(t *testing.T) {
	c := New()
	assert.Equal(t, Closed, c.State())
	assert.False(t, c.IsOpen())

	require.NoError(t, c.Open(nil))
	assert.Equal(t, Open, c.State())
	assert.Empty(t, c.EditingID())
	assert.Empty(t, c.Values())

	require.NoError(t, c.Submit(Values{"title": "E2E Test Task"}))
	assert.Equal(t, Submitting, c.State())
	assert.True(t, c.IsOpen())

	require.NoError(t, c.Succeed())
	assert.Equal(t, Closed, c.State())
	assert.Nil(t, c.Values())
}

func TestController_FailedSubmitKeepsValues(t *testing.T) {
	c := New()
	require.NoError(t, c.Open(nil))

	entered := Values{"title": "Draft", "description": "keep me"}
	require.NoError(t, c.Submit(entered))

	boom := errors.New("backend rejected")
	require.NoError(t, c.Fail(boom))

	assert.Equal(t, ErrorVisible, c.State())
	assert.True(t, c.IsOpen())
	assert.ErrorIs(t, c.Err(), boom)
	assert.Equal(t, "keep me", c.Values().Get("description"))

	// retry from the error state
	require.NoError(t, c.Submit(entered))
	require.NoError(t, c.Succeed())
	assert.Equal(t, Closed, c.State())
	assert.NoError(t, c.Err())
}

func TestController_EditPrefills(t *testing.T) {
	c := New()
	rec := model.Record{ID: "r1", Title: "Call bank", Description: "<p>re: loan</p>", Completed: true, Matter: "m9"}

	require.NoError(t, c.Open(&rec))

	assert.Equal(t, "r1", c.EditingID())
	assert.Equal(t, "Call bank", c.Values().Get("title"))
	assert.Equal(t, "on", c.Values().Get("completed"))
	assert.Equal(t, "m9", c.Values().Get("matter"))
}

func TestController_SingleInstance(t *testing.T) {
	c := New()
	require.NoError(t, c.Open(nil))
	assert.ErrorIs(t, c.Open(&model.Record{ID: "x"}), ErrAlreadyOpen)
	assert.Empty(t, c.EditingID(), "second open must not replace the first")
}

func TestController_InvalidTransitions(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.Submit(Values{}), ErrNotOpen)
	assert.ErrorIs(t, c.Succeed(), ErrNotPending)
	assert.ErrorIs(t, c.Fail(errors.New("x")), ErrNotPending)

	require.NoError(t, c.Open(nil))
	assert.ErrorIs(t, c.Succeed(), ErrNotPending)

	require.NoError(t, c.Submit(Values{}))
	assert.ErrorIs(t, c.Submit(Values{}), ErrNotOpen, "no double submit")
}

func TestController_CloseDiscardsInput(t *testing.T) {
	t.Run("from open", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Open(nil))
		require.NoError(t, c.Close())
		assert.Equal(t, Closed, c.State())
	})

	t.Run("from error", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Open(nil))
		require.NoError(t, c.Submit(Values{"title": "unsaved"}))
		require.NoError(t, c.Fail(errors.New("nope")))

		require.NoError(t, c.Close())
		assert.Equal(t, Closed, c.State())
		assert.Nil(t, c.Values())
		assert.NoError(t, c.Err())

		require.NoError(t, c.Open(nil))
		assert.Empty(t, c.Values().Get("title"))
	})

	t.Run("closing twice", func(t *testing.T) {
		c := New()
		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
		assert.Equal(t, Closed, c.State())
	})

	t.Run("not while submitting", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Open(nil))
		require.NoError(t, c.Submit(Values{"title": "pending"}))

		assert.ErrorIs(t, c.Close(), ErrSubmitting)
		assert.Equal(t, Submitting, c.State())
		assert.Equal(t, "pending", c.Values().Get("title"))

		require.NoError(t, c.Fail(errors.New("nope")))
		require.NoError(t, c.Close())
		assert.Equal(t, Closed, c.State())
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "error", ErrorVisible.String())
	assert.Equal(t, "state(42)", State(42).String())
}
