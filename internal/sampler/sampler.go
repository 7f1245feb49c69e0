package sampler

import (
	"fmt"
	"math"

	"github.com/style-miner/analyzer/internal/models"
)

const (
	// DefaultThreshold splits essays into common (>= 85) and rare (< 85).
	DefaultThreshold = 85.0
	// DefaultTolerance is the max distance from a stratum target for a
	// candidate to count as in range before falling back to closest-match.
	DefaultTolerance = 3.0
)

// UsageSet tracks essay IDs selected in earlier sampling passes. The caller
// owns it and passes it forward between calls.
type UsageSet map[int]bool

// Clone returns an independent copy.
func (s UsageSet) Clone() UsageSet {
	out := make(UsageSet, len(s))
	for id := range s {
		out[id] = true
	}
	return out
}

// Sampler selects one essay per grade stratum, preferring unused essays for
// common grades and allowing overlap for rare grades (rare low grades are
// scarce in real grading datasets).
type Sampler struct {
	Threshold float64
	Tolerance float64
}

// New returns a Sampler with the default threshold and tolerance.
func New() *Sampler {
	return &Sampler{Threshold: DefaultThreshold, Tolerance: DefaultTolerance}
}

// Partition splits pool into common (grade >= threshold) and rare essays.
// Every essay lands in exactly one side.
func (s *Sampler) Partition(pool []models.Essay) (common, rare []models.Essay) {
	for _, e := range pool {
		if e.Grade >= s.Threshold {
			common = append(common, e)
		} else {
			rare = append(rare, e)
		}
	}
	return common, rare
}

// Targets computes the five stratum target grades from pool.
func (s *Sampler) Targets(pool []models.Essay) map[models.Stratum]float64 {
	grades := make([]float64, len(pool))
	for i, e := range pool {
		grades[i] = e.Grade
	}
	sorted := sortedCopy(grades)
	q1, q3 := Quartiles(grades)

	return map[models.Stratum]float64{
		models.StratumMinimum: sorted[0],
		models.StratumQ1:      q1,
		models.StratumMedian:  Median(grades),
		models.StratumQ3:      q3,
		models.StratumMaximum: sorted[len(sorted)-1],
	}
}

// Sample selects one essay per stratum from pool. usedCommon and usedRare
// are never mutated; updated copies are returned. Duplicate selections
// across strata are permitted when the pool is small or skewed.
func (s *Sampler) Sample(pool []models.Essay, usedCommon, usedRare UsageSet) (map[models.Stratum]models.Essay, UsageSet, UsageSet, error) {
	if len(pool) == 0 {
		return nil, nil, nil, fmt.Errorf("sample: empty essay pool")
	}

	common, rare := s.Partition(pool)
	targets := s.Targets(pool)

	newCommon := usedCommon.Clone()
	newRare := usedRare.Clone()
	picks := make(map[models.Stratum]models.Essay, len(models.SampleOrder))

	for _, stratum := range models.SampleOrder {
		target := targets[stratum]

		var pick models.Essay
		if s.rareLeaning(stratum, target) {
			search := rare
			if len(search) == 0 {
				search = pool
			}
			candidates := withinTolerance(search, target, s.Tolerance)
			if len(candidates) == 0 {
				candidates = pool
			}
			pick = closestTo(candidates, target)
		} else {
			base := common
			if len(base) == 0 {
				base = pool
			}
			unused := excludeUsed(base, usedCommon)
			if len(unused) > 0 {
				candidates := withinTolerance(unused, target, s.Tolerance)
				if len(candidates) == 0 {
					candidates = unused
				}
				pick = closestTo(candidates, target)
			} else {
				// All common essays already used: overlap is permitted.
				candidates := withinTolerance(base, target, s.Tolerance)
				if len(candidates) == 0 {
					candidates = base
				}
				pick = closestTo(candidates, target)
			}
		}

		picks[stratum] = pick

		// Recorded by grade class, regardless of which stratum produced it.
		if pick.Grade >= s.Threshold {
			newCommon[pick.ID] = true
		} else {
			newRare[pick.ID] = true
		}
	}

	return picks, newCommon, newRare, nil
}

// rareLeaning classifies a stratum by its current target value, not its
// name: a skewed pool whose median sits below the threshold makes the
// median stratum rare-leaning. The minimum stratum is always rare-leaning.
func (s *Sampler) rareLeaning(stratum models.Stratum, target float64) bool {
	return stratum == models.StratumMinimum || target < s.Threshold
}

func withinTolerance(essays []models.Essay, target, tolerance float64) []models.Essay {
	var out []models.Essay
	for _, e := range essays {
		if math.Abs(e.Grade-target) <= tolerance {
			out = append(out, e)
		}
	}
	return out
}

// closestTo picks the essay whose grade is nearest target. Ties go to the
// first candidate in pool order.
func closestTo(essays []models.Essay, target float64) models.Essay {
	best := essays[0]
	bestDist := math.Abs(best.Grade - target)
	for _, e := range essays[1:] {
		if d := math.Abs(e.Grade - target); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

func excludeUsed(essays []models.Essay, used UsageSet) []models.Essay {
	var out []models.Essay
	for _, e := range essays {
		if !used[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
