package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var ErrInvalidConfig = errors.New("invalid optimizer configuration")

// Acceptance strategy names.
const (
	AcceptImproving = "improve"
	AcceptAnnealing = "annealing"
)

// Options tunes a single optimisation run.
type Options struct {
	MaxIterations  int
	UsageThreshold int
	LambdaFactor   float64
	LatenessWeight float64

	// EnforceMaintenanceWindows skips trucks that are under maintenance or
	// broken down at the simulation start. Off by default.
	EnforceMaintenanceWindows bool

	Acceptance         string
	InitialTemperature float64
	CoolingRate        float64
	MinTemperature     float64
	Seed               int64
}

func DefaultOptions() Options {
	return Options{
		MaxIterations:      100,
		UsageThreshold:     1,
		LambdaFactor:       0.1,
		LatenessWeight:     10000,
		Acceptance:         AcceptImproving,
		InitialTemperature: 1000,
		CoolingRate:        0.995,
		MinTemperature:     1,
	}
}

func (o Options) Validate() error {
	if o.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must be >= 0, got %d", ErrInvalidConfig, o.MaxIterations)
	}
	if o.UsageThreshold < 0 {
		return fmt.Errorf("%w: usage threshold must be >= 0, got %d", ErrInvalidConfig, o.UsageThreshold)
	}
	if o.LambdaFactor < 0 || o.LatenessWeight < 0 {
		return fmt.Errorf("%w: lambda factor and lateness weight must be >= 0", ErrInvalidConfig)
	}

	switch strings.ToLower(o.Acceptance) {
	case "", AcceptImproving:
	case AcceptAnnealing:
		if o.InitialTemperature <= 0 {
			return fmt.Errorf("%w: initial temperature must be > 0", ErrInvalidConfig)
		}
		if o.CoolingRate <= 0 || o.CoolingRate >= 1 {
			return fmt.Errorf("%w: cooling rate must be in (0, 1), got %v", ErrInvalidConfig, o.CoolingRate)
		}
	default:
		return fmt.Errorf("%w: unknown acceptance %q", ErrInvalidConfig, o.Acceptance)
	}

	return nil
}

// NewAcceptor builds the acceptance strategy selected by the options.
func (o Options) NewAcceptor() (Acceptor, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if strings.ToLower(o.Acceptance) != AcceptAnnealing {
		return ImproveOnly{}, nil
	}

	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewAnnealing(o.InitialTemperature, o.CoolingRate, o.MinTemperature, rand.New(rand.NewSource(seed))), nil
}
