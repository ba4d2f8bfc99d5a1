package brackets

import (
	"fmt"
)

// Pairing is one scheduled meeting in a round-robin rotation. Slot is the
// zero-based time slot the pairing falls into, so two pairings with the
// same slot can run on different courts at the same time.
type Pairing struct {
	Team1ID int
	Team2ID int
	Slot    int
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() *RoundRobinGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GeneratePairings builds a single round-robin schedule using the circle
// method. Every team plays every other team exactly once. With an odd
// number of teams one team sits out each rotation.
func (g *RoundRobinGenerator) GeneratePairings(teamIDs []int) ([]Pairing, error) {
	n := len(teamIDs)
	if n < 2 {
		return nil, fmt.Errorf("round robin needs at least 2 teams, got %d", n)
	}

	rotation := make([]int, n)
	copy(rotation, teamIDs)

	// Pad with a sentinel for the bye when the field is odd.
	const bye = -1
	if len(rotation)%2 != 0 {
		rotation = append(rotation, bye)
	}

	rounds := len(rotation) - 1
	half := len(rotation) / 2
	pairings := make([]Pairing, 0, rounds*half)

	for round := 0; round < rounds; round++ {
		for i := 0; i < half; i++ {
			t1 := rotation[i]
			t2 := rotation[len(rotation)-1-i]
			if t1 == bye || t2 == bye {
				continue
			}
			pairings = append(pairings, Pairing{Team1ID: t1, Team2ID: t2, Slot: round})
		}

		// Rotate all but the first element clockwise.
		last := rotation[len(rotation)-1]
		copy(rotation[2:], rotation[1:len(rotation)-1])
		rotation[1] = last
	}

	return pairings, nil
}
