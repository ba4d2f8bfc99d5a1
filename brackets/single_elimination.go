package brackets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// BracketMatch is the structural description of one slot in a generated
// bracket. Matches that depend on earlier results carry the UIDs of their
// source matches instead of team IDs.
type BracketMatch struct {
	UID          string
	Round        int
	OrderInRound int

	Team1ID *int
	Team2ID *int

	SourceMatch1UID *string
	SourceMatch2UID *string

	IsBye     bool
	ByeTeamID *int
}

type node struct {
	teamID         *int
	sourceMatchUID *string
	isBye          bool
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	teamIDs := params.TeamIDs
	n := len(teamIDs)

	if n < 2 {
		return nil, errors.New("single elimination bracket needs at least 2 teams")
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)

	// Place seeds so the top seeds meet as late as possible and any byes
	// fall to the best seeds first.
	slots := seedOrder(bracketSize)
	currentRound := make([]*node, bracketSize)
	for i, seed := range slots {
		if seed <= n {
			id := teamIDs[seed-1]
			currentRound[i] = &node{teamID: &id}
		} else {
			currentRound[i] = &node{isBye: true}
		}
	}

	matches := make([]*BracketMatch, 0, bracketSize-1)

	for r := 1; r <= numRounds; r++ {
		nextRound := make([]*node, 0, len(currentRound)/2)
		orderInRound := 0

		for i := 0; i < len(currentRound); i += 2 {
			node1 := currentRound[i]
			node2 := currentRound[i+1]

			if node1.isBye && node2.isBye {
				nextRound = append(nextRound, &node{isBye: true})
				continue
			}

			orderInRound++
			uid := fmt.Sprintf("R%dM%d", r, orderInRound)

			bm := &BracketMatch{
				UID:          uid,
				Round:        r,
				OrderInRound: orderInRound,
			}

			switch {
			case node1.teamID != nil && node2.isBye:
				bm.IsBye = true
				bm.ByeTeamID = node1.teamID
				bm.Team1ID = node1.teamID
				nextRound = append(nextRound, &node{teamID: node1.teamID})

			case node2.teamID != nil && node1.isBye:
				bm.IsBye = true
				bm.ByeTeamID = node2.teamID
				bm.Team1ID = node2.teamID
				nextRound = append(nextRound, &node{teamID: node2.teamID})

			default:
				bm.Team1ID = node1.teamID
				bm.SourceMatch1UID = node1.sourceMatchUID
				bm.Team2ID = node2.teamID
				bm.SourceMatch2UID = node2.sourceMatchUID
				nextRound = append(nextRound, &node{sourceMatchUID: &uid})
			}

			matches = append(matches, bm)
		}
		currentRound = nextRound
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].OrderInRound < matches[j].OrderInRound
	})

	return matches, nil
}

// seedOrder returns the seed assigned to each first-round slot for a full
// bracket of the given power-of-two size, using standard bracket placement
// (seed 1 and seed 2 in opposite halves).
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		mirror := len(order)*2 + 1
		next := make([]int, 0, len(order)*2)
		for _, s := range order {
			next = append(next, s, mirror-s)
		}
		order = next
	}
	return order
}
