package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// TotalWeightBps is the required sum of a non-empty strategy's weights.
const TotalWeightBps = 10000

// StrategyEntry assigns a basis-point weight to one yield source. A strategy
// is always replaced wholesale, never mutated entry by entry, so the weight
// invariant is checked at the single point of change.
type StrategyEntry struct {
	SourceID  uuid.UUID `json:"sourceID"`
	WeightBps uint16    `json:"weightBps"`
}

// ValidateStrategyWeights checks the structural half of the strategy
// invariant: entries present, weights positive, sources distinct, and
// weights summing to exactly TotalWeightBps. Source liveness is checked by
// the controller, which holds the adapters.
func ValidateStrategyWeights(entries []StrategyEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: empty strategy", ErrInvalidAllocation)
	}
	seen := map[uuid.UUID]bool{}
	total := 0
	for _, e := range entries {
		if e.WeightBps == 0 {
			return fmt.Errorf("%w: zero weight for source %s", ErrInvalidAllocation, e.SourceID)
		}
		if seen[e.SourceID] {
			return fmt.Errorf("%w: duplicate source %s", ErrInvalidAllocation, e.SourceID)
		}
		seen[e.SourceID] = true
		total += int(e.WeightBps)
	}
	if total != TotalWeightBps {
		return fmt.Errorf("%w: weights sum to %d, want %d", ErrInvalidAllocation, total, TotalWeightBps)
	}
	return nil
}
