package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillPublisher_GoChannel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, pubSub := NewGoChannelPublisher("activity", logger)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "activity")
	require.NoError(t, err)

	event := NewEvent(EventTypeReviewSubmitted, map[string]interface{}{"thesis_id": 42, "score": 95})
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, EventTypeReviewSubmitted, msg.Metadata.Get(metadataEventType))

		var decoded Event
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventTypeReviewSubmitted, decoded.Type)
		assert.Equal(t, EventSource, decoded.Source)
		assert.Equal(t, EventVersion, decoded.Version)
		assert.EqualValues(t, 42, decoded.Data["thesis_id"])
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(nil)
	ctx := context.Background()

	require.NoError(t, mock.Publish(ctx, NewEvent(EventTypeUserLoggedIn, nil)))
	require.NoError(t, mock.Publish(ctx, NewEvent(EventTypeUserLoggedOut, nil)))

	assert.Equal(t, []string{EventTypeUserLoggedIn, EventTypeUserLoggedOut}, mock.EventTypes())
	assert.Len(t, mock.GetPublishedEvents(), 2)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(EventTypeThesisSubmitted, nil)
	b := NewEvent(EventTypeThesisSubmitted, nil)

	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
