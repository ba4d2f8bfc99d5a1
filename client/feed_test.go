package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beachrally/tournament-server/models"
)

func TestFeedCursorAdvancesToMaxTimestamp(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", Config{})
	f := NewUpdatesFeed(c, 1, time.Minute)
	start := int64(90)
	f.cursor = &start

	f.apply([]models.Update{
		{ID: 11, Timestamp: 100},
		{ID: 12, Timestamp: 105},
		{ID: 13, Timestamp: 98},
	})

	require.NotNil(t, f.Cursor())
	assert.Equal(t, int64(105), *f.Cursor())

	items := f.Items()
	require.Len(t, items, 3)
	// Batch order preserved.
	assert.Equal(t, 11, items[0].ID)
	assert.Equal(t, 12, items[1].ID)
	assert.Equal(t, 13, items[2].ID)
}

func TestFeedPrependsNewerBatches(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", Config{})
	f := NewUpdatesFeed(c, 1, time.Minute)

	f.apply([]models.Update{{ID: 1, Timestamp: 50}})
	f.apply([]models.Update{{ID: 2, Timestamp: 80}, {ID: 3, Timestamp: 70}})

	items := f.Items()
	require.Len(t, items, 3)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 3, items[1].ID)
	assert.Equal(t, 1, items[2].ID)
	assert.Equal(t, int64(80), *f.Cursor())
}

func TestFeedEmptyBatchLeavesCursorUnchanged(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", Config{})
	f := NewUpdatesFeed(c, 1, time.Minute)
	start := int64(42)
	f.cursor = &start

	f.apply(nil)

	assert.Equal(t, int64(42), *f.Cursor())
	assert.Empty(t, f.Items())
}

func TestFeedPollFailureDoesNotStopPolling(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.Update{{ID: 1, TournamentID: 1, Timestamp: 100}})
	}, nil)

	f := NewUpdatesFeed(c, 1, time.Minute)

	f.poll(context.Background())
	require.Error(t, f.Err())
	assert.Empty(t, f.Items())

	f.poll(context.Background())
	require.NoError(t, f.Err())
	assert.Len(t, f.Items(), 1)
}

func TestFeedSendsCursorAsSinceParam(t *testing.T) {
	var mu sync.Mutex
	var sinceSeen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		sinceSeen = append(sinceSeen, r.URL.Query().Get("since"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.Update{{ID: 1, TournamentID: 1, Timestamp: 105}})
	}, nil)

	f := NewUpdatesFeed(c, 1, time.Minute)
	f.poll(context.Background())
	f.poll(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sinceSeen, 2)
	assert.Equal(t, "", sinceSeen[0])
	assert.Equal(t, "105", sinceSeen[1])
}

func TestStoppedFeedDropsInFlightResults(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", Config{})
	f := NewUpdatesFeed(c, 1, time.Minute)

	f.Stop()
	f.apply([]models.Update{{ID: 1, Timestamp: 100}})

	assert.Empty(t, f.Items())
	assert.Nil(t, f.Cursor())
}

func TestFeedStopIsIdempotentAndEndsStart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}, nil)

	f := NewUpdatesFeed(c, 1, 10*time.Millisecond)
	done := make(chan struct{})
	go func() {
		f.Start(context.Background())
		close(done)
	}()

	time.Sleep(25 * time.Millisecond)
	f.Stop()
	f.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("feed did not stop")
	}
}
