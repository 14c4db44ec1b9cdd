package nats

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"student-risk-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.PREDICTION_MADE", Subject(events.PredictionMade))
}

func TestPublishSubscribe(t *testing.T) {
	url := os.Getenv("NATS_TEST_URL")
	if url == "" {
		t.Skip("NATS_TEST_URL not set")
	}
	ctx := context.Background()

	pub, err := NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	sub, err := NewSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	marker := uuid.NewString()
	var (
		mu  sync.Mutex
		got []events.Event
	)
	err = sub.Subscribe(ctx, Subject(events.UserLogin), "test-"+marker, func(_ context.Context, e events.Event) error {
		if e.Payload()["marker"] != marker {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, events.New(events.UserLogin, map[string]interface{}{"marker": marker})))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 5*time.Second, 50*time.Millisecond)
}
