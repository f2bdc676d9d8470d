package services

import (
	"math"
	"math/rand"
)

// Acceptor decides whether a candidate replaces the current solution and
// whether its own schedule has run out.
type Acceptor interface {
	Name() string
	Accept(candidateCost, bestCost float64) bool
	// Step advances the acceptance schedule after each iteration.
	Step()
	// Exhausted reports that the schedule asks the search to stop.
	Exhausted() bool
}

// ImproveOnly accepts strictly better candidates only.
type ImproveOnly struct{}

func (ImproveOnly) Name() string { return AcceptImproving }

func (ImproveOnly) Accept(candidateCost, bestCost float64) bool {
	return candidateCost < bestCost
}

func (ImproveOnly) Step() {}

func (ImproveOnly) Exhausted() bool { return false }

// Annealing also accepts worse candidates with probability
// exp((best - candidate) / temperature) under geometric cooling.
type Annealing struct {
	Temperature    float64
	CoolingRate    float64
	MinTemperature float64
	rng            *rand.Rand
}

func NewAnnealing(initial, cooling, floor float64, rng *rand.Rand) *Annealing {
	return &Annealing{
		Temperature:    initial,
		CoolingRate:    cooling,
		MinTemperature: floor,
		rng:            rng,
	}
}

func (a *Annealing) Name() string { return AcceptAnnealing }

func (a *Annealing) Accept(candidateCost, bestCost float64) bool {
	if candidateCost < bestCost {
		return true
	}
	if a.Temperature <= 0 {
		return false
	}
	return a.rng.Float64() < math.Exp((bestCost-candidateCost)/a.Temperature)
}

func (a *Annealing) Step() { a.Temperature *= a.CoolingRate }

// Exhausted reports whether the temperature has cooled down to the floor.
func (a *Annealing) Exhausted() bool { return a.Temperature <= a.MinTemperature }
