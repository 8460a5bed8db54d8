package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOutboxFIFO(t *testing.T) {
	o := NewOutbox()
	require.NoError(t, o.Push(Frame("one")))
	require.NoError(t, o.Push(Frame("two")))
	require.NoError(t, o.Push(Frame("three")))

	ctx := context.Background()
	for _, want := range []string{"one", "two", "three"} {
		got, err := o.Pop(ctx)
		require.NoError(t, err)
		require.Equal(t, want, string(got))
	}
}

func TestOutboxPushNeverBlocks(t *testing.T) {
	o := NewOutbox()
	// No consumer; a bounded channel would stall here.
	for i := 0; i < 10000; i++ {
		require.NoError(t, o.Push(Frame("x")))
	}
	require.Equal(t, 10000, o.Len())
}

func TestOutboxPopWaitsForPush(t *testing.T) {
	o := NewOutbox()
	done := make(chan Frame, 1)
	go func() {
		f, err := o.Pop(context.Background())
		if err == nil {
			done <- f
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, o.Push(Frame("late")))

	select {
	case f := <-done:
		require.Equal(t, "late", string(f))
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up")
	}
}

func TestOutboxCloseDrainsThenFails(t *testing.T) {
	o := NewOutbox()
	require.NoError(t, o.Push(Frame("queued")))
	o.Close()

	require.ErrorIs(t, o.Push(Frame("rejected")), ErrOutboxClosed)

	f, err := o.Pop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "queued", string(f))

	_, err = o.Pop(context.Background())
	require.ErrorIs(t, err, ErrOutboxClosed)
}

func TestOutboxCloseWakesPopper(t *testing.T) {
	o := NewOutbox()
	errs := make(chan error, 1)
	go func() {
		_, err := o.Pop(context.Background())
		errs <- err
	}()

	time.Sleep(10 * time.Millisecond)
	o.Close()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, ErrOutboxClosed)
	case <-time.After(time.Second):
		t.Fatal("Pop did not observe Close")
	}
}

func TestOutboxPopHonorsContext(t *testing.T) {
	o := NewOutbox()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := o.Pop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOutboxCloseIdempotent(t *testing.T) {
	o := NewOutbox()
	o.Close()
	o.Close()
}
