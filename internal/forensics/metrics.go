package forensics

import (
	"math"
)

// scorePrecision is the number of decimal places composite scores keep, so
// that sums of the fixed weights compare exactly against cut points.
const scorePrecision = 1e6

// shannonEntropy calculates Shannon entropy from a histogram.
// Formula: H = -sum (c_j/n) * log2(c_j/n) for non-zero bins
func shannonEntropy(histogram []int) float64 {
	n := 0
	for _, count := range histogram {
		n += count
	}
	if n == 0 {
		return 0
	}

	entropy := 0.0
	nFloat := float64(n)
	for _, count := range histogram {
		if count > 0 {
			p := float64(count) / nFloat
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}

// TimelineEntropy is the Shannon entropy of RSID occurrence frequencies in
// timeline. One distinct RSID gives 0; N equally frequent RSIDs give log2(N).
func TimelineEntropy(timeline []string) float64 {
	counts := make(map[string]int)
	for _, id := range timeline {
		counts[id]++
	}
	histogram := make([]int, 0, len(counts))
	for _, c := range counts {
		histogram = append(histogram, c)
	}
	return shannonEntropy(histogram)
}

// RunLengths returns the lengths of maximal runs of identical consecutive
// entries in timeline.
func RunLengths(timeline []string) []int {
	if len(timeline) == 0 {
		return []int{}
	}
	var lengths []int
	current := 1
	for i := 1; i < len(timeline); i++ {
		if timeline[i] == timeline[i-1] {
			current++
			continue
		}
		lengths = append(lengths, current)
		current = 1
	}
	return append(lengths, current)
}

// mean returns the arithmetic mean, or 0 for no values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the population standard deviation.
// Formula: sqrt(sum (x_i - mean)^2 / n)
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// ratio divides, returning 0 when the denominator is 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// clampScore clamps v to [0, 1] and rounds away accumulated float error.
func clampScore(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return math.Round(v*scorePrecision) / scorePrecision
}
