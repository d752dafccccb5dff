// Package memory implements the synchronous memory-pressure governor:
// every dense or binary Collection consults it on insert (SparseCollection
// has no governor), and it reports a pressure level and
// an actionable recommendation against a configured ceiling. There is no
// background monitoring goroutine — pressure is recomputed on demand from
// a caller-supplied byte count, matching the engine's single-threaded,
// synchronous-per-call concurrency model.
package memory

import (
	"fmt"

	"github.com/xDarkicex/edgevec/internal/edvcerr"
)

// Level is one of the three pressure bands.
type Level int

const (
	Normal Level = iota
	Warning
	Critical
)

func (l Level) String() string {
	switch l {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Config configures a Governor.
type Config struct {
	// CeilingBytes is the configured memory ceiling. Zero disables the
	// governor: Check always reports Normal and admits every insert.
	CeilingBytes int64
	// WarningThreshold and CriticalThreshold are fractions of CeilingBytes
	// (defaults 0.70 and 0.90 if zero).
	WarningThreshold  float64
	CriticalThreshold float64
	// AllowInsertsAtCritical, when true, lets Admit succeed even at critical
	// pressure. The spec's default is to block at critical, so the zero
	// value (false) is the blocking behavior.
	AllowInsertsAtCritical bool
}

// Governor tracks engine-allocated bytes against a ceiling and answers
// synchronous admission checks.
type Governor struct {
	cfg Config
}

// New returns a Governor applying config defaults for zero fields.
func New(cfg Config) *Governor {
	if cfg.WarningThreshold == 0 {
		cfg.WarningThreshold = 0.70
	}
	if cfg.CriticalThreshold == 0 {
		cfg.CriticalThreshold = 0.90
	}
	return &Governor{cfg: cfg}
}

// Status is the result of a pressure check.
type Status struct {
	Level          Level
	UsedBytes      int64
	CeilingBytes   int64
	Fraction       float64
	Recommendation string
}

// Check computes the current pressure level for usedBytes against the
// configured ceiling, with a human-actionable recommendation string.
func (g *Governor) Check(usedBytes int64) Status {
	if g.cfg.CeilingBytes <= 0 {
		return Status{Level: Normal, UsedBytes: usedBytes, Recommendation: "healthy"}
	}
	frac := float64(usedBytes) / float64(g.cfg.CeilingBytes)
	st := Status{UsedBytes: usedBytes, CeilingBytes: g.cfg.CeilingBytes, Fraction: frac}
	switch {
	case frac >= g.cfg.CriticalThreshold:
		st.Level = Critical
		st.Recommendation = "compact or delete vectors now"
	case frac >= g.cfg.WarningThreshold:
		st.Level = Warning
		reclaimPct := int((frac - g.cfg.WarningThreshold) * 100)
		st.Recommendation = fmt.Sprintf("run compact to reclaim roughly %d%%", reclaimPct)
	default:
		st.Level = Normal
		st.Recommendation = "healthy"
	}
	return st
}

// Admit checks whether an insert is permitted given usedBytes, returning
// edvcerr.CodeMemoryCritical if the governor is configured to block
// inserts at critical pressure and usedBytes has crossed that threshold.
func (g *Governor) Admit(usedBytes int64) error {
	st := g.Check(usedBytes)
	if st.Level == Critical && !g.cfg.AllowInsertsAtCritical {
		return edvcerr.Newf(edvcerr.CodeMemoryCritical, "insert refused: memory usage %d/%d bytes (%.1f%%) at critical pressure", usedBytes, g.cfg.CeilingBytes, st.Fraction*100)
	}
	return nil
}
