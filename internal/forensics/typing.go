package forensics

import (
	"sort"

	"github.com/ZanMander/Forensic-linguistics/internal/rsid"
)

// Copy-paste score thresholds and weights.
const (
	ThresholdMaxConsecutive = 10    // longest timeline streak
	ThresholdAvgWordsHigh   = 100.0 // words per RSID
	ThresholdAvgWordsMid    = 50.0
	ThresholdStdDevWords    = 100.0
	ThresholdLowEntropy     = 2.0
	ThresholdTopShare       = 40.0 // percent of all words
	ThresholdVariationCount = 2

	WeightMaxConsecutive = 0.3
	WeightAvgWordsHigh   = 0.2
	WeightAvgWordsMid    = 0.1
	WeightStdDevWords    = 0.15
	WeightLowEntropy     = 0.15
	WeightTopShare       = 0.2
	WeightVariation      = 0.1
)

// Large-block criteria.
const (
	LargeBlockMinWords       = 50
	LargeBlockMinConsecutive = 3
)

// TopRSIDCount is the number of RSIDs reported by word share.
const TopRSIDCount = 5

// ClassifyTyping scores how likely the text was pasted rather than typed.
//
// The entropy and top-share indicators measure how the document is spread
// over its paragraphs, so they apply only when the timeline has more than
// one entry. A one-paragraph document has no distribution to judge. A
// longer document written under a single RSID still scores on both. An
// empty timeline yields a neutral result.
func ClassifyTyping(aggregates map[string]*rsid.Aggregate, timeline []string) TypingAnalysis {
	ta := TypingAnalysis{
		ConsecutiveSegments: []int{},
		TopRSIDs:            []RSIDShare{},
		LargeBlocks:         []LargeBlock{},
		StyleVariations:     []string{},
		FontVariations:      []string{},
		ManualTypingScore:   1,
		Conclusion:          ConclusionInsufficientData,
	}
	if len(timeline) == 0 {
		return ta
	}

	ids := make([]string, 0, len(aggregates))
	for id := range aggregates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	words := make([]float64, 0, len(ids))
	segments := 0
	for _, id := range ids {
		a := aggregates[id]
		ta.TotalWords += a.WordCount
		segments += a.SegmentCount
		words = append(words, float64(a.WordCount))
	}
	ta.RSIDCount = len(ids)
	ta.AvgWordsPerRSID = ratio(float64(ta.TotalWords), float64(len(ids)))
	ta.AvgWordsPerSegment = ratio(float64(ta.TotalWords), float64(segments))
	ta.StdDevWords = stdDev(words)

	ta.ConsecutiveSegments = RunLengths(timeline)
	lengths := make([]float64, len(ta.ConsecutiveSegments))
	for i, n := range ta.ConsecutiveSegments {
		lengths[i] = float64(n)
		if n > ta.MaxConsecutiveSegments {
			ta.MaxConsecutiveSegments = n
		}
	}
	ta.AvgConsecutiveSegments = mean(lengths)

	ta.Entropy = TimelineEntropy(timeline)
	ta.TopRSIDs = topShares(aggregates, ids, ta.TotalWords)

	for _, id := range ids {
		a := aggregates[id]
		if a.WordCount > LargeBlockMinWords && a.ConsecutiveCount > LargeBlockMinConsecutive {
			ta.LargeBlocks = append(ta.LargeBlocks, LargeBlock{
				RSID:             id,
				WordCount:        a.WordCount,
				ConsecutiveCount: a.ConsecutiveCount,
			})
		}
		if len(a.Styles) > 1 {
			ta.StyleVariations = append(ta.StyleVariations, id)
		}
		if len(a.Fonts) > 1 {
			ta.FontVariations = append(ta.FontVariations, id)
		}
	}
	sort.SliceStable(ta.LargeBlocks, func(i, j int) bool {
		return ta.LargeBlocks[i].WordCount > ta.LargeBlocks[j].WordCount
	})

	ta.CopyPasteScore = copyPasteScore(ta, len(timeline) > 1)
	ta.ManualTypingScore = 1 - ta.CopyPasteScore
	ta.Conclusion = conclude(ta.CopyPasteScore)
	return ta
}

// copyPasteScore accumulates the independent indicators.
func copyPasteScore(ta TypingAnalysis, distributed bool) float64 {
	score := 0.0

	if ta.MaxConsecutiveSegments > ThresholdMaxConsecutive {
		score += WeightMaxConsecutive
	}

	if ta.AvgWordsPerRSID > ThresholdAvgWordsHigh {
		score += WeightAvgWordsHigh
	} else if ta.AvgWordsPerRSID > ThresholdAvgWordsMid {
		score += WeightAvgWordsMid
	}

	if ta.StdDevWords > ThresholdStdDevWords {
		score += WeightStdDevWords
	}

	if distributed && ta.Entropy < ThresholdLowEntropy {
		score += WeightLowEntropy
	}

	if distributed && len(ta.TopRSIDs) > 0 && ta.TopRSIDs[0].Percentage > ThresholdTopShare {
		score += WeightTopShare
	}

	if len(ta.StyleVariations) > ThresholdVariationCount || len(ta.FontVariations) > ThresholdVariationCount {
		score += WeightVariation
	}

	return clampScore(score)
}

// conclude maps a clamped score to a verdict at cut points 0.3/0.5/0.7/0.9.
func conclude(score float64) Conclusion {
	switch {
	case score < 0.3:
		return ConclusionManual
	case score < 0.5:
		return ConclusionMostlyManual
	case score < 0.7:
		return ConclusionMixed
	case score < 0.9:
		return ConclusionCopyPaste
	default:
		return ConclusionStrongCopyPaste
	}
}

// topShares returns up to TopRSIDCount RSIDs by word count, ties by RSID.
func topShares(aggregates map[string]*rsid.Aggregate, ids []string, total int) []RSIDShare {
	shares := make([]RSIDShare, 0, len(ids))
	for _, id := range ids {
		wc := aggregates[id].WordCount
		shares = append(shares, RSIDShare{
			RSID:       id,
			WordCount:  wc,
			Percentage: ratio(float64(wc), float64(total)) * 100,
		})
	}
	// ids is sorted, so a stable sort keeps ties in RSID order.
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].WordCount > shares[j].WordCount
	})
	if len(shares) > TopRSIDCount {
		shares = shares[:TopRSIDCount]
	}
	return shares
}
