package flux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitter_EmitOrder(t *testing.T) {
	e := NewEmitter(nil)

	var calls []string
	e.On("change", func(args ...any) { calls = append(calls, "a") })
	e.On("change", func(args ...any) { calls = append(calls, "b") })
	e.On("other", func(args ...any) { calls = append(calls, "other") })

	require.NoError(t, e.Emit("change"))
	require.Equal(t, []string{"a", "b"}, calls)
}

func TestEmitter_Args(t *testing.T) {
	e := NewEmitter(nil)

	var got []any
	e.On("change", func(args ...any) { got = args })

	require.NoError(t, e.Emit("change", "vpc", 2))
	require.Equal(t, []any{"vpc", 2}, got)
}

func TestEmitter_SameListenerTwice(t *testing.T) {
	e := NewEmitter(nil)

	count := 0
	fn := func(args ...any) { count++ }
	first := e.On("change", fn)
	second := e.On("change", fn)
	require.NotEqual(t, first, second)

	require.NoError(t, e.Emit("change"))
	require.Equal(t, 2, count)

	e.RemoveListener("change", first)
	require.NoError(t, e.Emit("change"))
	require.Equal(t, 3, count)
}

func TestEmitter_RemoveListener(t *testing.T) {
	t.Run("removes only the matching registration", func(t *testing.T) {
		e := NewEmitter(nil)

		var calls []string
		a := e.On("change", func(args ...any) { calls = append(calls, "a") })
		e.On("change", func(args ...any) { calls = append(calls, "b") })

		e.RemoveListener("change", a)
		require.NoError(t, e.Emit("change"))
		require.Equal(t, []string{"b"}, calls)
		require.Equal(t, 1, e.ListenerCount("change"))
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		e := NewEmitter(nil)
		e.On("change", func(args ...any) {})

		e.RemoveListener("change", 999)
		e.RemoveListener("missing", 1)
		require.Equal(t, 1, e.ListenerCount("change"))
	})

	t.Run("removal during emit does not skip listeners", func(t *testing.T) {
		e := NewEmitter(nil)

		var calls []string
		var b ListenerID
		e.On("change", func(args ...any) {
			calls = append(calls, "a")
			e.RemoveListener("change", b)
		})
		b = e.On("change", func(args ...any) { calls = append(calls, "b") })

		require.NoError(t, e.Emit("change"))
		require.Equal(t, []string{"a", "b"}, calls)

		require.NoError(t, e.Emit("change"))
		require.Equal(t, []string{"a", "b", "a"}, calls)
	})
}

func TestEmitter_NilListener(t *testing.T) {
	e := NewEmitter(nil)
	require.Zero(t, e.On("change", nil))
	require.Zero(t, e.ListenerCount("change"))
}

func TestEmitter_PanicIsolation(t *testing.T) {
	e := NewEmitter(nil)

	var calls []string
	e.On("change", func(args ...any) { calls = append(calls, "a") })
	bad := e.On("change", func(args ...any) { panic("listener exploded") })
	e.On("change", func(args ...any) { calls = append(calls, "c") })

	err := e.Emit("change")
	require.Error(t, err)
	require.Equal(t, []string{"a", "c"}, calls)

	var panicErr *ListenerPanicError
	require.True(t, errors.As(err, &panicErr))
	require.Equal(t, bad, panicErr.ID)
	require.Equal(t, "change", panicErr.Event)
	require.Equal(t, "listener exploded", panicErr.Value)
	require.NotEmpty(t, panicErr.Stack)
}

func TestEmitter_EmitDefer(t *testing.T) {
	t.Run("emission waits for the loop", func(t *testing.T) {
		l := NewLoop()
		e := NewEmitter(l)

		called := false
		e.On("change", func(args ...any) { called = true })

		require.NoError(t, e.EmitDefer("change"))
		require.False(t, called)

		l.RunPending()
		require.True(t, called)
	})

	t.Run("no loop", func(t *testing.T) {
		e := NewEmitter(nil)
		require.ErrorIs(t, e.EmitDefer("change"), ErrNoLoop)
	})

	t.Run("listener panic does not break the loop", func(t *testing.T) {
		l := NewLoop()
		e := NewEmitter(l)

		called := false
		e.On("change", func(args ...any) { panic("boom") })
		e.On("change", func(args ...any) { called = true })

		require.NoError(t, e.EmitDefer("change"))
		l.RunPending()
		require.True(t, called)
		require.Zero(t, l.Stats().Panicked)
	})
}
