package forensics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/ZanMander/Forensic-linguistics/internal/formatting"
	"github.com/ZanMander/Forensic-linguistics/internal/rsid"
)

// Misconduct thresholds and weights.
const (
	ThresholdCopyPasteHigh      = 0.7
	ThresholdCopyPasteMedium    = 0.5
	ThresholdLargeBlockHigh     = 40.0 // percent of all words
	ThresholdLargeBlockMedium   = 20.0
	ThresholdFormattingHigh     = 0.7
	ThresholdFormattingMedium   = 0.3
	ThresholdStyleVariations    = 3
	ThresholdMinHistoryEvents   = 3
	ThresholdHistoryComplexity  = 0.5
	MisconductDetectedThreshold = 0.5

	WeightCopyPasteHigh      = 0.3
	WeightCopyPasteMedium    = 0.2
	WeightLargeBlockHigh     = 0.25
	WeightLargeBlockMedium   = 0.15
	WeightFormattingHigh     = 0.25
	WeightFormattingMedium   = 0.15
	WeightStyleVariations    = 0.15
	WeightDocumentMerge      = 0.2
	WeightLimitedEditHistory = 0.15
)

// MisconductInput gathers the upstream results the aggregator combines.
type MisconductInput struct {
	Typing      TypingAnalysis
	Aggregates  map[string]*rsid.Aggregate
	Formatting  formatting.Profile
	ChangeCount int
}

// AssessMisconduct combines independent signals into a confidence in [0, 1].
// Each fired condition adds its weight and an indicator.
func AssessMisconduct(in MisconductInput) MisconductAssessment {
	ma := MisconductAssessment{Indicators: []Indicator{}}
	score := 0.0
	add := func(t IndicatorType, sev Severity, weight float64, desc string) {
		score += weight
		ma.Indicators = append(ma.Indicators, Indicator{Type: t, Severity: sev, Description: desc})
	}

	cp := in.Typing.CopyPasteScore
	switch {
	case cp > ThresholdCopyPasteHigh:
		add(IndicatorCopyPaste, SeverityHigh, WeightCopyPasteHigh,
			fmt.Sprintf("High copy-paste likelihood (score %.2f)", cp))
	case cp > ThresholdCopyPasteMedium:
		add(IndicatorCopyPaste, SeverityMedium, WeightCopyPasteMedium,
			fmt.Sprintf("Moderate copy-paste likelihood (score %.2f)", cp))
	}

	share := LargeBlockShare(in.Typing)
	switch {
	case share > ThresholdLargeBlockHigh:
		add(IndicatorLargeBlocks, SeverityHigh, WeightLargeBlockHigh,
			fmt.Sprintf("%.1f%% of words come from %d large contiguous blocks", share, len(in.Typing.LargeBlocks)))
	case share > ThresholdLargeBlockMedium:
		add(IndicatorLargeBlocks, SeverityMedium, WeightLargeBlockMedium,
			fmt.Sprintf("%.1f%% of words come from %d large contiguous blocks", share, len(in.Typing.LargeBlocks)))
	}

	sev := in.Formatting.Severity
	switch {
	case sev > ThresholdFormattingHigh:
		add(IndicatorFormatting, SeverityHigh, WeightFormattingHigh,
			fmt.Sprintf("Severe formatting inconsistencies (severity %.2f)", sev))
	case sev > ThresholdFormattingMedium:
		add(IndicatorFormatting, SeverityMedium, WeightFormattingMedium,
			fmt.Sprintf("Formatting inconsistencies (severity %.2f)", sev))
	}

	if n := len(in.Typing.StyleVariations); n > ThresholdStyleVariations {
		add(IndicatorStyleVariation, SeverityMedium, WeightStyleVariations,
			fmt.Sprintf("%d revision sessions mix multiple styles", n))
	}

	if merged := MergedRSIDs(in.Aggregates); len(merged) > 0 {
		add(IndicatorDocumentMerge, SeverityMedium, WeightDocumentMerge,
			fmt.Sprintf("%d revision sessions carry multiple text identifiers, suggesting merged documents", len(merged)))
	}

	if in.ChangeCount < ThresholdMinHistoryEvents && cp > ThresholdHistoryComplexity {
		add(IndicatorLimitedHistory, SeverityMedium, WeightLimitedEditHistory,
			fmt.Sprintf("Limited edit history despite complexity (%d change events)", in.ChangeCount))
	}

	ma.Confidence = clampScore(score)
	ma.Detected = ma.Confidence > MisconductDetectedThreshold
	ma.Summary = summarize(ma.Confidence)
	ma.Analysis = analysisText(ma)
	return ma
}

// LargeBlockShare is the percentage of all words that belong to large blocks.
func LargeBlockShare(ta TypingAnalysis) float64 {
	words := 0
	for _, b := range ta.LargeBlocks {
		words += b.WordCount
	}
	return ratio(float64(words), float64(ta.TotalWords)) * 100
}

// MergedRSIDs returns the RSIDs observed with more than one distinct text
// identifier, sorted.
func MergedRSIDs(aggregates map[string]*rsid.Aggregate) []string {
	var out []string
	for id, a := range aggregates {
		if len(a.TextIDs) > 1 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// summarize maps confidence to a tier at cut points 0.2/0.4/0.6/0.8.
func summarize(confidence float64) string {
	switch {
	case confidence < 0.2:
		return "No significant indicators of misconduct"
	case confidence < 0.4:
		return "Low likelihood of misconduct - minor irregularities noted"
	case confidence < 0.6:
		return "Moderate indicators - further review recommended"
	case confidence < 0.8:
		return "High likelihood of misconduct - multiple strong indicators"
	default:
		return "Very high likelihood of misconduct - consistent evidence across indicators"
	}
}

func analysisText(ma MisconductAssessment) string {
	if len(ma.Indicators) == 0 {
		return fmt.Sprintf("No indicators fired. Confidence %.2f.", ma.Confidence)
	}
	parts := make([]string, len(ma.Indicators))
	for i, ind := range ma.Indicators {
		parts[i] = fmt.Sprintf("[%s] %s", ind.Severity, ind.Description)
	}
	return fmt.Sprintf("%d indicator(s) fired with confidence %.2f: %s.",
		len(ma.Indicators), ma.Confidence, strings.Join(parts, "; "))
}

// EvaluateInput is everything Evaluate needs from the extraction stages.
type EvaluateInput struct {
	Extraction       *rsid.Extraction
	Formatting       formatting.Profile
	ChangeCount      int
	TotalEditMinutes int
	Styles           *etree.Element
}

// Evaluate runs the classifier, segmenter, completeness estimator and
// misconduct aggregator in dependency order.
func Evaluate(in EvaluateInput) *Findings {
	x := in.Extraction
	if x == nil {
		x = rsid.Empty()
	}

	typing := ClassifyTyping(x.Aggregates, x.Timeline)
	return &Findings{
		Typing:       typing,
		Sessions:     SummarizeSessions(SegmentSessions(x.Timeline), in.TotalEditMinutes),
		Completeness: EstimateCompleteness(x.Paragraphs, HeadingStyles(in.Styles), in.Formatting.Detected),
		Misconduct: AssessMisconduct(MisconductInput{
			Typing:      typing,
			Aggregates:  x.Aggregates,
			Formatting:  in.Formatting,
			ChangeCount: in.ChangeCount,
		}),
	}
}
