package brackets

import (
	"context"
)

// GenerateBracketParams carries the seeded field for a bracket build.
// TeamIDs must be ordered best seed first.
type GenerateBracketParams struct {
	TournamentID int
	TeamIDs      []int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}
