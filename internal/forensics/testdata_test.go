package forensics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ZanMander/Forensic-linguistics/internal/rsid"
)

// =============================================================================
// Test Data Generators for Forensics Package
// =============================================================================

// TestDataGenerator provides methods for generating synthetic RSID data.
type TestDataGenerator struct {
	rng *rand.Rand
}

// NewTestDataGenerator creates a generator with a seed.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Timeline returns n entries drawn from k distinct RSIDs.
func (g *TestDataGenerator) Timeline(n, k int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = rsidName(g.rng.Intn(k))
	}
	return out
}

// Aggregates builds consistent aggregates for timeline: each paragraph gets
// one run with a random number of words.
func (g *TestDataGenerator) Aggregates(timeline []string, maxWords int) map[string]*rsid.Aggregate {
	out := make(map[string]*rsid.Aggregate)
	for i, id := range timeline {
		a, ok := out[id]
		if !ok {
			a = newAggregate()
			out[id] = a
		}
		a.WordCount += 1 + g.rng.Intn(maxWords)
		a.SegmentCount++
		if i > 0 && timeline[i-1] == id {
			a.ConsecutiveCount++
		}
	}
	return out
}

func rsidName(i int) string {
	return fmt.Sprintf("00%06X", i+1)
}

func newAggregate() *rsid.Aggregate {
	return &rsid.Aggregate{
		Fonts:      []string{},
		Sizes:      []string{},
		Styles:     []string{},
		TextIDs:    []string{},
		Authors:    []string{},
		Timestamps: []string{},
	}
}

// aggregate is a compact constructor for table tests.
func aggregate(words, segments, consecutive int) *rsid.Aggregate {
	a := newAggregate()
	a.WordCount = words
	a.CharacterCount = words * 5
	a.SegmentCount = segments
	a.ConsecutiveCount = consecutive
	return a
}

// repeat returns n copies of id.
func repeat(id string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = id
	}
	return out
}

// IsApproximatelyEqual checks if two floats are approximately equal.
func IsApproximatelyEqual(a, b, tolerance float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if math.IsInf(a, 1) && math.IsInf(b, 1) {
		return true
	}
	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return true
	}
	return math.Abs(a-b) <= tolerance
}
