package hnsw

import (
	"github.com/xDarkicex/edgevec/internal/distance"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
)

// Config holds the construction and search parameters for an HNSW graph.
type Config struct {
	Dimension int
	// M is the maximum number of bidirectional links per node at levels
	// above 0.
	M int
	// M0 is the maximum number of bidirectional links per node at level 0.
	// The original HNSW paper observes the base layer benefits from denser
	// connectivity than the upper levels, so M0 is conventionally set
	// independently of M (commonly 2*M, but callers may tune it).
	M0 int
	// EfConstruction is the size of the dynamic candidate list explored
	// while inserting a new node.
	EfConstruction int
	// EfSearch is the default size of the dynamic candidate list explored
	// at level 0 during a query; Search uses max(EfSearch, k).
	EfSearch int
	// LevelMultiplier is ml in the level-assignment formula
	// level = floor(-ln(u) * LevelMultiplier). 1/ln(M) is the conventional
	// default; callers needing determinism should also set RandomSeed.
	LevelMultiplier float64
	Metric          distance.Metric
	RandomSeed      int64
}

func (c *Config) validate() error {
	if c.Dimension <= 0 {
		return edvcerr.New(edvcerr.CodeInvalidDimensions, "dimension must be positive")
	}
	if c.M <= 0 {
		return edvcerr.New(edvcerr.CodeInvalidDimensions, "M must be positive")
	}
	if c.M0 <= 0 {
		return edvcerr.New(edvcerr.CodeInvalidDimensions, "M0 must be positive")
	}
	if c.EfConstruction <= 0 {
		return edvcerr.New(edvcerr.CodeInvalidDimensions, "EfConstruction must be positive")
	}
	if c.EfSearch <= 0 {
		return edvcerr.New(edvcerr.CodeInvalidDimensions, "EfSearch must be positive")
	}
	if c.LevelMultiplier <= 0 {
		return edvcerr.New(edvcerr.CodeInvalidDimensions, "LevelMultiplier must be positive")
	}
	return nil
}
