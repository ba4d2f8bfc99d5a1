package client

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/beachrally/tournament-server/models"
)

// View holds the fetch state of one mounted list/detail view: loading, error,
// or data. Responses carry the sequence number of the request that produced
// them, and only the most recently issued request may apply, so a slow stale
// response can never overwrite a newer one. A closed view applies nothing.
type View[T any] struct {
	mu      sync.Mutex
	seq     uint64
	closed  bool
	loading bool
	data    T
	err     error
}

func NewView[T any]() *View[T] {
	return &View[T]{}
}

// Begin marks a fetch in flight and returns its sequence number, to be
// passed back to Apply.
func (v *View[T]) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.loading = true
	return v.seq
}

// Apply records the outcome of the fetch identified by seq. Stale sequence
// numbers and closed views are dropped silently.
func (v *View[T]) Apply(seq uint64, data T, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || seq != v.seq {
		return false
	}
	v.loading = false
	v.data = data
	v.err = err
	return true
}

// Close tears the view down; any in-flight response arriving afterwards is
// discarded.
func (v *View[T]) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Snapshot returns the current render state.
func (v *View[T]) Snapshot() (data T, err error, loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.data, v.err, v.loading
}

// SortStandingsByRank orders standings for display: ranked entries first in
// rank order, unranked entries after them in their incoming order. The sort
// is stable, so re-sorting unchanged input never reorders.
func SortStandingsByRank(standings []models.PoolStanding) []models.PoolStanding {
	out := make([]models.PoolStanding, len(standings))
	copy(out, standings)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Rank, out[j].Rank
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri < *rj
		}
	})
	return out
}

// FilterMatchesByStatus keeps matches with the given status. An empty status
// returns everything, which backs the "All" tab.
func FilterMatchesByStatus(matches []models.Match, status models.MatchStatus) []models.Match {
	if status == "" {
		out := make([]models.Match, len(matches))
		copy(out, matches)
		return out
	}
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

// TournamentPage bundles the collections a tournament detail view needs.
type TournamentPage struct {
	Tournament *models.Tournament
	Teams      []models.Team
	Matches    []models.Match
}

// LoadTournamentPage issues the page's fetches concurrently and fails as a
// unit, matching how a detail view mounts.
func LoadTournamentPage(ctx context.Context, c *Client, tournamentID int) (*TournamentPage, error) {
	page := &TournamentPage{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := c.GetTournament(gctx, tournamentID)
		if err != nil {
			return err
		}
		page.Tournament = t
		return nil
	})
	g.Go(func() error {
		teams, err := c.ListTeams(gctx, tournamentID)
		if err != nil {
			return err
		}
		page.Teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := c.ListMatches(gctx, tournamentID, nil)
		if err != nil {
			return err
		}
		page.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}
