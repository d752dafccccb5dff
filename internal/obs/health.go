package obs

import "github.com/xDarkicex/edgevec/internal/memory"

// Snapshot is the point-in-time view a caller gets back from Engine.Describe:
// enough to decide whether to compact or shed load, without exposing any
// index internals.
type Snapshot struct {
	Status         string
	PressureLevel  memory.Level
	Recommendation string
	VectorCount    int
	TombstoneCount int
	TombstoneRatio float64
}

// BuildSnapshot assembles a Snapshot from the governor's current pressure
// status and the vector/tombstone counts an index (or the sum across an
// engine's collections) reports.
func BuildSnapshot(pressure memory.Status, vectorCount, tombstoneCount int) Snapshot {
	var ratio float64
	if vectorCount > 0 {
		ratio = float64(tombstoneCount) / float64(vectorCount)
	}

	status := "healthy"
	switch pressure.Level {
	case memory.Critical:
		status = "critical"
	case memory.Warning:
		status = "degraded"
	}

	return Snapshot{
		Status:         status,
		PressureLevel:  pressure.Level,
		Recommendation: pressure.Recommendation,
		VectorCount:    vectorCount,
		TombstoneCount: tombstoneCount,
		TombstoneRatio: ratio,
	}
}
