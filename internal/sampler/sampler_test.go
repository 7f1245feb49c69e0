package sampler

import (
	"testing"

	"github.com/style-miner/analyzer/internal/models"
)

func testPool() []models.Essay {
	return []models.Essay{
		{ID: 0, Module: 1, Grade: 60, Text: "essay 0", Feedback: "needs work"},
		{ID: 1, Module: 1, Grade: 80, Text: "essay 1", Feedback: "close"},
		{ID: 2, Module: 2, Grade: 85, Text: "essay 2", Feedback: "solid"},
		{ID: 3, Module: 2, Grade: 95, Text: "essay 3", Feedback: "strong"},
		{ID: 4, Module: 3, Grade: 100, Text: "essay 4", Feedback: "excellent"},
	}
}

func TestPartition(t *testing.T) {
	s := New()
	pool := testPool()
	common, rare := s.Partition(pool)

	if len(common) != 3 {
		t.Errorf("expected 3 common essays, got %d", len(common))
	}
	if len(rare) != 2 {
		t.Errorf("expected 2 rare essays, got %d", len(rare))
	}

	// Re-joining the split must reproduce the pool exactly.
	seen := make(map[int]int)
	for _, e := range common {
		if e.Grade < s.Threshold {
			t.Errorf("essay %d (grade %v) landed in common", e.ID, e.Grade)
		}
		seen[e.ID]++
	}
	for _, e := range rare {
		if e.Grade >= s.Threshold {
			t.Errorf("essay %d (grade %v) landed in rare", e.ID, e.Grade)
		}
		seen[e.ID]++
	}
	if len(seen) != len(pool) {
		t.Errorf("partition lost essays: %d of %d accounted for", len(seen), len(pool))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("essay %d appears %d times across the split", id, count)
		}
	}
}

func TestSampleReturnsFiveMembers(t *testing.T) {
	s := New()
	pool := testPool()

	picks, _, _, err := s.Sample(pool, UsageSet{}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(picks) != len(models.SampleOrder) {
		t.Fatalf("expected %d strata, got %d", len(models.SampleOrder), len(picks))
	}

	inPool := make(map[int]bool)
	for _, e := range pool {
		inPool[e.ID] = true
	}
	for stratum, e := range picks {
		if !models.ValidStrata[stratum] {
			t.Errorf("unknown stratum %q", stratum)
		}
		if !inPool[e.ID] {
			t.Errorf("stratum %s selected essay %d not in pool", stratum, e.ID)
		}
	}

	if picks[models.StratumMinimum].Grade > picks[models.StratumMaximum].Grade {
		t.Errorf("minimum selection grade %v exceeds maximum selection grade %v",
			picks[models.StratumMinimum].Grade, picks[models.StratumMaximum].Grade)
	}
}

func TestSampleExtremeTargets(t *testing.T) {
	s := New()

	picks, _, _, err := s.Sample(testPool(), UsageSet{}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := picks[models.StratumMinimum].Grade; got != 60 {
		t.Errorf("minimum stratum grade = %v, want 60", got)
	}
	if got := picks[models.StratumMaximum].Grade; got != 100 {
		t.Errorf("maximum stratum grade = %v, want 100", got)
	}
}

func TestSampleRecordsUsage(t *testing.T) {
	s := New()

	picks, usedCommon, usedRare, err := s.Sample(testPool(), UsageSet{}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for stratum, e := range picks {
		if e.Grade >= s.Threshold {
			if !usedCommon[e.ID] {
				t.Errorf("stratum %s: common essay %d missing from usedCommon", stratum, e.ID)
			}
			if usedRare[e.ID] {
				t.Errorf("stratum %s: common essay %d leaked into usedRare", stratum, e.ID)
			}
		} else {
			if !usedRare[e.ID] {
				t.Errorf("stratum %s: rare essay %d missing from usedRare", stratum, e.ID)
			}
			if usedCommon[e.ID] {
				t.Errorf("stratum %s: rare essay %d leaked into usedCommon", stratum, e.ID)
			}
		}
	}
}

func TestSampleDoesNotMutateInputSets(t *testing.T) {
	s := New()
	usedCommon := UsageSet{99: true}
	usedRare := UsageSet{}

	_, newCommon, _, err := s.Sample(testPool(), usedCommon, usedRare)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(usedCommon) != 1 || len(usedRare) != 0 {
		t.Errorf("input sets were mutated: common=%v rare=%v", usedCommon, usedRare)
	}
	if len(newCommon) < 2 {
		t.Errorf("expected updated common set to grow, got %v", newCommon)
	}
}

func TestSamplePrefersUnusedCommon(t *testing.T) {
	s := New()
	pool := testPool()

	// Grade 95 (id 3) already used; q3 target is 97.5, so the unused
	// grade-100 essay within tolerance must win over the used one.
	picks, _, _, err := s.Sample(pool, UsageSet{3: true}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := picks[models.StratumQ3].ID; got == 3 {
		t.Errorf("q3 stratum reused essay 3 while unused common essays remain")
	}
}

func TestSampleAllCommonUsedFallsBack(t *testing.T) {
	s := New()
	pool := testPool()

	used := UsageSet{2: true, 3: true, 4: true}
	picks, _, _, err := s.Sample(pool, used, UsageSet{})
	if err != nil {
		t.Fatalf("expected overlap fallback, got error: %v", err)
	}

	if got := picks[models.StratumMaximum].Grade; got < s.Threshold {
		t.Errorf("maximum stratum returned rare essay (grade %v) instead of overlapping", got)
	}
}

func TestSampleDeterministic(t *testing.T) {
	s := New()
	pool := testPool()

	a, _, _, err := s.Sample(pool, UsageSet{}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _, _, err := s.Sample(pool, UsageSet{}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, stratum := range models.SampleOrder {
		if a[stratum].ID != b[stratum].ID {
			t.Errorf("stratum %s: first call picked %d, second picked %d",
				stratum, a[stratum].ID, b[stratum].ID)
		}
	}
}

func TestSampleSkewedPoolReclassifiesMedian(t *testing.T) {
	s := New()
	// Median sits below the threshold, so the median stratum becomes
	// rare-leaning and must draw from the rare pool.
	pool := []models.Essay{
		{ID: 0, Grade: 55},
		{ID: 1, Grade: 60},
		{ID: 2, Grade: 70},
		{ID: 3, Grade: 75},
		{ID: 4, Grade: 90},
	}

	picks, _, _, err := s.Sample(pool, UsageSet{}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := picks[models.StratumMedian].Grade; got >= s.Threshold {
		t.Errorf("median stratum selected common essay (grade %v) from a skewed pool", got)
	}
}

func TestSampleSingleEssayPool(t *testing.T) {
	s := New()
	pool := []models.Essay{{ID: 7, Grade: 88}}

	picks, _, _, err := s.Sample(pool, UsageSet{}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, stratum := range models.SampleOrder {
		if picks[stratum].ID != 7 {
			t.Errorf("stratum %s: expected the only essay, got id %d", stratum, picks[stratum].ID)
		}
	}
}

func TestSampleEmptyPool(t *testing.T) {
	s := New()
	if _, _, _, err := s.Sample(nil, UsageSet{}, UsageSet{}); err == nil {
		t.Fatal("expected error for empty pool")
	}
}

func TestSampleTieBreakFirstWins(t *testing.T) {
	s := New()
	// Both rare essays sit 10 points from the q1 target of 70; the first
	// one in pool order must win.
	pool := testPool()

	picks, _, _, err := s.Sample(pool, UsageSet{}, UsageSet{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := picks[models.StratumQ1].ID; got != 0 {
		t.Errorf("q1 tie-break picked essay %d, want first-encountered essay 0", got)
	}
}
