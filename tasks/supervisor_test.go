/*************************************************************************
 * Copyright 2026 The Orosu Authors
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, sub *Subscription, n int, timeout time.Duration) []Event {
	t.Helper()
	var out []Event
	deadline := time.After(timeout)
	for len(out) < n {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d", n, len(out))
		}
	}
	return out
}

func TestRunCapturesStdoutAndExitCode(t *testing.T) {
	sup, err := Run(context.Background(), Spec{Argv: []string{"sh", "-c", "echo hello world"}})
	require.NoError(t, err)

	sub := sup.Subscribe()
	events := collect(t, sub, 1, 5*time.Second)
	require.Equal(t, "hello world", events[0].Line.Text)
	require.False(t, events[0].Line.Stderr)

	code := sup.Wait(context.Background())
	require.Equal(t, 0, code)
}

func TestRunCapturesStderrAndNonZeroExit(t *testing.T) {
	sup, err := Run(context.Background(), Spec{Argv: []string{"sh", "-c", "echo oops 1>&2; exit 7"}})
	require.NoError(t, err)

	sub := sup.Subscribe()
	events := collect(t, sub, 1, 5*time.Second)
	require.Equal(t, "oops", events[0].Line.Text)
	require.True(t, events[0].Line.Stderr)

	code := sup.Wait(context.Background())
	require.Equal(t, 7, code)
}

func TestRunPassesAttachmentsDir(t *testing.T) {
	sup, err := Run(context.Background(), Spec{
		Argv:           []string{"sh", "-c", "echo $ATTACHMENTS_DIR"},
		AttachmentsDir: "/tmp/orosu-attachments-test",
	})
	require.NoError(t, err)

	sub := sup.Subscribe()
	events := collect(t, sub, 1, 5*time.Second)
	require.Equal(t, "/tmp/orosu-attachments-test", events[0].Line.Text)
	require.Equal(t, 0, sup.Wait(context.Background()))
}

func TestRunSpawnFailureReportsExitCodeOne(t *testing.T) {
	sup, err := Run(context.Background(), Spec{Argv: []string{"/no/such/executable-orosu"}})
	require.Error(t, err)
	require.NotNil(t, sup)

	sub := sup.Subscribe()
	events := collect(t, sub, 1, time.Second)
	require.True(t, events[0].Line.Stderr)
	require.Contains(t, events[0].Line.Text, "Failed to start script")

	require.Equal(t, 1, sup.Wait(context.Background()))
}

func TestRunEmptyArgv(t *testing.T) {
	_, err := Run(context.Background(), Spec{})
	require.ErrorIs(t, err, ErrEmptyArgv)
}

func TestWaitKillsOnContextCancel(t *testing.T) {
	sup, err := Run(context.Background(), Spec{Argv: []string{"sleep", "30"}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	code := sup.Wait(ctx)
	require.Less(t, time.Since(start), 5*time.Second)
	require.Equal(t, -1, code)
}

func TestSubscribeAfterFastExitStillSeesOutput(t *testing.T) {
	sup, err := Run(context.Background(), Spec{Argv: []string{"sh", "-c", "echo fast"}})
	require.NoError(t, err)

	code := sup.Wait(context.Background())
	require.Equal(t, 0, code)

	// The child has already exited and the broadcaster has already run
	// closeAll by the time we subscribe; the primary subscription,
	// registered before the capture goroutines started, must still
	// carry the line the child produced.
	sub := sup.Subscribe()
	events := collect(t, sub, 1, 5*time.Second)
	require.Equal(t, "fast", events[0].Line.Text)
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	sup, err := Run(context.Background(), Spec{Argv: []string{"sh", "-c", "echo hi"}})
	require.NoError(t, err)
	require.Equal(t, 0, sup.Wait(context.Background()))

	// Drain the primary subscription so the next Subscribe call falls
	// through to the broadcaster, which has already closed.
	first := sup.Subscribe()
	collect(t, first, 1, 5*time.Second)

	late := sup.Subscribe()
	select {
	case _, ok := <-late.Events():
		require.False(t, ok, "expected an already-closed channel")
	case <-time.After(5 * time.Second):
		t.Fatal("late subscription never closed: would block forever in a real session")
	}
}

func TestBroadcasterLagNotification(t *testing.T) {
	b := newBroadcaster()
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	for i := 0; i < subscriberCapacity+5; i++ {
		b.publish(Event{Line: &OutputLine{Text: "line"}})
	}

	var sawLag bool
	for i := 0; i < subscriberCapacity; i++ {
		ev := <-sub.events
		if ev.Lagged != nil {
			sawLag = true
		}
	}
	require.True(t, sawLag)
}
