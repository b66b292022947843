package liveevents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_ReceivesPublishedEvents(t *testing.T) {
	hub := NewHub()

	sub, backlog, err := hub.Subscribe(CollectionBills)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, backlog)

	event := ChangeEvent{
		Collection: CollectionBills,
		Action:     ActionCreated,
		EntityID:   "42",
		OccurredAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}
	hub.Publish(event)

	select {
	case got := <-sub.Events():
		assert.Equal(t, event, got)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}
}

func TestSubscribe_ReplaysBacklog(t *testing.T) {
	hub := NewHub()

	for i := 0; i < 3; i++ {
		hub.Publish(ChangeEvent{
			Collection: CollectionCustomers,
			Action:     ActionUpdated,
			EntityID:   "7",
		})
	}

	sub, backlog, err := hub.Subscribe(CollectionCustomers)
	require.NoError(t, err)
	defer sub.Close()
	assert.Len(t, backlog, 3)
}

func TestSubscribe_BacklogIsBounded(t *testing.T) {
	hub := NewHub()

	for i := 0; i < DefaultBufferSize+25; i++ {
		hub.Publish(ChangeEvent{Collection: CollectionTransactions, Action: ActionCreated})
	}

	sub, backlog, err := hub.Subscribe(CollectionTransactions)
	require.NoError(t, err)
	defer sub.Close()
	assert.Len(t, backlog, DefaultBufferSize)
}

func TestSubscribe_StreamsAreIndependent(t *testing.T) {
	hub := NewHub()

	billSub, _, err := hub.Subscribe(CollectionBills)
	require.NoError(t, err)
	defer billSub.Close()

	hub.Publish(ChangeEvent{Collection: CollectionCustomers, Action: ActionCreated})

	select {
	case <-billSub.Events():
		t.Fatal("bill subscriber must not see customer events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribe_RejectsUnknownCollection(t *testing.T) {
	hub := NewHub()

	_, _, err := hub.Subscribe("meters")
	assert.Error(t, err)
}

func TestPublish_DropsEventsForSlowSubscribers(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(CollectionBills)
	require.NoError(t, err)
	defer sub.Close()

	// Fill the subscriber channel past capacity; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < DefaultSubscriberBuffer*2; i++ {
			hub.Publish(ChangeEvent{Collection: CollectionBills, Action: ActionCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestIsCollection(t *testing.T) {
	assert.True(t, IsCollection(CollectionCustomers))
	assert.True(t, IsCollection(CollectionBills))
	assert.True(t, IsCollection(CollectionTransactions))
	assert.False(t, IsCollection("meters"))
	assert.False(t, IsCollection(""))
}
