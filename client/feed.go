package client

import (
	"context"
	"sync"
	"time"

	"github.com/beachrally/tournament-server/models"
)

// DefaultPollInterval is how often a mounted live view re-fetches updates.
const DefaultPollInterval = 30 * time.Second

const feedPageSize = 20

// UpdatesFeed polls a tournament's updates endpoint and accumulates items
// newest first. After the initial page it only asks for items past the last
// seen timestamp and prepends them. A failed cycle is remembered as the
// current error and the next tick proceeds normally; one network blip never
// ends live updates. Stop releases the ticker, and a stopped feed discards
// any response still in flight.
type UpdatesFeed struct {
	client       *Client
	tournamentID int
	interval     time.Duration

	mu      sync.Mutex
	items   []models.Update
	cursor  *int64
	lastErr error
	stopped bool

	stopOnce sync.Once
	stop     chan struct{}
}

func NewUpdatesFeed(client *Client, tournamentID int, interval time.Duration) *UpdatesFeed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &UpdatesFeed{
		client:       client,
		tournamentID: tournamentID,
		interval:     interval,
		stop:         make(chan struct{}),
	}
}

// Start fetches once immediately, then on every tick until Stop is called or
// the context is cancelled. It blocks, so run it in its own goroutine.
func (f *UpdatesFeed) Start(ctx context.Context) {
	f.poll(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.poll(ctx)
		case <-f.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends polling. Safe to call more than once.
func (f *UpdatesFeed) Stop() {
	f.stopOnce.Do(func() {
		f.mu.Lock()
		f.stopped = true
		f.mu.Unlock()
		close(f.stop)
	})
}

// Items returns a copy of the accumulated feed, newest first.
func (f *UpdatesFeed) Items() []models.Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Update, len(f.items))
	copy(out, f.items)
	return out
}

// Err reports the outcome of the most recent poll cycle; nil after a
// successful cycle.
func (f *UpdatesFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *UpdatesFeed) poll(ctx context.Context) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	since := f.cursor
	f.mu.Unlock()

	updates, err := f.client.ListUpdates(ctx, f.tournamentID, since, feedPageSize)
	if err != nil {
		f.mu.Lock()
		if !f.stopped {
			f.lastErr = err
		}
		f.mu.Unlock()
		return
	}
	f.apply(updates)
}

// apply prepends a batch in its original order and advances the cursor to
// the largest timestamp seen. An empty batch leaves the cursor untouched.
func (f *UpdatesFeed) apply(batch []models.Update) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	f.lastErr = nil
	if len(batch) == 0 {
		return
	}

	maxTS := batch[0].Timestamp
	for _, u := range batch[1:] {
		if u.Timestamp > maxTS {
			maxTS = u.Timestamp
		}
	}
	if f.cursor == nil || maxTS > *f.cursor {
		cursor := maxTS
		f.cursor = &cursor
	}

	merged := make([]models.Update, 0, len(batch)+len(f.items))
	merged = append(merged, batch...)
	merged = append(merged, f.items...)
	f.items = merged
}

// Cursor exposes the current since watermark, nil before the first non-empty
// batch.
func (f *UpdatesFeed) Cursor() *int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cursor == nil {
		return nil
	}
	cursor := *f.cursor
	return &cursor
}
