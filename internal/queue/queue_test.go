package queue

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue_NoSubscribers(t *testing.T) {
	q := NewInMemoryQueue(nil)
	assert.Error(t, q.Publish(TopicCampaignCompleted, CampaignCompletedEvent{}))
}

func TestInMemoryQueue_RetriesUntilSuccess(t *testing.T) {
	q := NewInMemoryQueue(nil)
	q.RetryDelay = time.Millisecond

	var wg sync.WaitGroup
	wg.Add(1)
	attempts := 0
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		wg.Done()
		return nil
	}))

	require.NoError(t, q.Publish("t", "hello"))
	wg.Wait()
	assert.Equal(t, 3, attempts)
}

func TestInMemoryQueue_GivesUp(t *testing.T) {
	q := NewInMemoryQueue(nil)
	q.RetryDelay = time.Millisecond
	q.MaxRetries = 2

	calls := make(chan struct{}, 10)
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		calls <- struct{}{}
		return errors.New("always")
	}))
	require.NoError(t, q.Publish("t", 1))

	for i := 0; i < 3; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatalf("expected attempt %d", i+1)
		}
	}
	select {
	case <-calls:
		t.Fatal("handler called after retries were exhausted")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDecodeCampaignCompleted(t *testing.T) {
	ev := CampaignCompletedEvent{CampaignID: "c1", UserID: "u1", SentLeadIDs: []string{"l1"}, Failed: 2}

	got, err := DecodeCampaignCompleted(ev)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	got, err = DecodeCampaignCompleted(&ev)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	raw, _ := json.Marshal(ev)
	got, err = DecodeCampaignCompleted(raw)
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CampaignID)
	assert.Equal(t, []string{"l1"}, got.SentLeadIDs)

	_, err = DecodeCampaignCompleted(42)
	assert.Error(t, err)
}
