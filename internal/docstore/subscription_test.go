package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, sub *Subscription, match func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Events():
			require.True(t, ok, "subscription closed early")
			if match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestSubscribeDeliversInitialSnapshotThenChanges(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	_, err := client.Add(ctx, "orders", Document{"status": "pending"})
	require.NoError(t, err)

	sub, err := client.Subscribe(ctx, "orders", ListOptions{})
	require.NoError(t, err)
	defer sub.Close()

	first := waitFor(t, sub, func(Snapshot) bool { return true })
	require.NoError(t, first.Err)
	assert.Len(t, first.Documents, 1)

	_, err = client.Add(ctx, "orders", Document{"status": "pending"})
	require.NoError(t, err)
	waitFor(t, sub, func(s Snapshot) bool { return s.Err == nil && len(s.Documents) == 2 })
}

func TestSubscribeSeesWritesFromOtherClients(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	reader := NewClient(backend, Options{})
	writer := NewClient(backend, Options{})

	sub, err := reader.Subscribe(ctx, "faqs", ListOptions{})
	require.NoError(t, err)
	defer sub.Close()
	waitFor(t, sub, func(s Snapshot) bool { return len(s.Documents) == 0 })

	_, err = writer.Add(ctx, "faqs", Document{"question": "q"})
	require.NoError(t, err)
	waitFor(t, sub, func(s Snapshot) bool { return len(s.Documents) == 1 })
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	client, _, _ := newTestClient(t)

	sub, err := client.Subscribe(context.Background(), "users", ListOptions{})
	require.NoError(t, err)

	sub.Close()
	sub.Close()

	done := make(chan struct{})
	go func() {
		for range sub.Events() {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("events channel not closed after Close")
	}
}

func TestSubscriptionStopsWithParentContext(t *testing.T) {
	client, _, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := client.Subscribe(ctx, "users", ListOptions{})
	require.NoError(t, err)
	cancel()
	sub.Close()

	_, err = client.Subscribe(ctx, "users", ListOptions{})
	assert.Error(t, err)
}

func TestSubscriptionReportsErrors(t *testing.T) {
	backend := NewMemoryBackend()
	client := NewClient(backend, Options{})
	backend.SetAvailable(false)

	sub, err := client.Subscribe(context.Background(), "orders", ListOptions{})
	require.NoError(t, err)
	defer sub.Close()

	snap := waitFor(t, sub, func(Snapshot) bool { return true })
	assert.Error(t, snap.Err)
}
