// Package forensics derives authorship and editing signals from RSID
// statistics and combines them into composite scores.
//
// Every function here is a pure function of its inputs. Weights and
// thresholds are exported constants; they are empirical and are kept
// exactly as documented.
package forensics

// Severity grades a misconduct indicator.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// IndicatorType categorizes a misconduct indicator.
type IndicatorType string

const (
	IndicatorCopyPaste      IndicatorType = "copy_paste"
	IndicatorLargeBlocks    IndicatorType = "large_blocks"
	IndicatorFormatting     IndicatorType = "formatting_inconsistency"
	IndicatorStyleVariation IndicatorType = "style_variation"
	IndicatorDocumentMerge  IndicatorType = "document_merge"
	IndicatorLimitedHistory IndicatorType = "limited_edit_history"
)

// Indicator is one fired misconduct condition.
type Indicator struct {
	Type        IndicatorType `json:"type"`
	Severity    Severity      `json:"severity"`
	Description string        `json:"description"`
}

// Conclusion is the verdict of the typing-pattern classifier.
type Conclusion string

const (
	ConclusionManual           Conclusion = "Strong indication of manual typing"
	ConclusionMostlyManual     Conclusion = "Mostly manual typing with some possible copy-paste"
	ConclusionMixed            Conclusion = "Mixed typing patterns - possible partial copy-paste"
	ConclusionCopyPaste        Conclusion = "Strong indication of copy-paste"
	ConclusionStrongCopyPaste  Conclusion = "Very strong indication of copy-paste content"
	ConclusionInsufficientData Conclusion = "Insufficient data for typing analysis"
)

// RSIDShare is an RSID's share of the document's words.
type RSIDShare struct {
	RSID       string  `json:"rsid"`
	WordCount  int     `json:"word_count"`
	Percentage float64 `json:"percentage"`
}

// LargeBlock is an RSID that contributed a long contiguous span of text.
type LargeBlock struct {
	RSID             string `json:"rsid"`
	WordCount        int    `json:"word_count"`
	ConsecutiveCount int    `json:"consecutive_count"`
}

// TypingAnalysis is the output of ClassifyTyping.
type TypingAnalysis struct {
	TotalWords             int          `json:"total_words"`
	RSIDCount              int          `json:"rsid_count"`
	AvgWordsPerRSID        float64      `json:"avg_words_per_rsid"`
	ConsecutiveSegments    []int        `json:"consecutive_segments"`
	MaxConsecutiveSegments int          `json:"max_consecutive_segments"`
	AvgConsecutiveSegments float64      `json:"avg_consecutive_segments"`
	AvgWordsPerSegment     float64      `json:"avg_words_per_segment"`
	TopRSIDs               []RSIDShare  `json:"top_rsids"`
	StdDevWords            float64      `json:"std_dev_words"`
	Entropy                float64      `json:"entropy"`
	LargeBlocks            []LargeBlock `json:"large_blocks"`
	StyleVariations        []string     `json:"style_variations"`
	FontVariations         []string     `json:"font_variations"`
	CopyPasteScore         float64      `json:"copy_paste_score"`
	ManualTypingScore      float64      `json:"manual_typing_score"`
	Conclusion             Conclusion   `json:"conclusion"`
}

// Session is a contiguous slice of the RSID timeline.
type Session struct {
	Start       int      `json:"start"`
	RSIDs       []string `json:"rsids"`
	UniqueRSIDs int      `json:"unique_rsids"`
}

// Len returns the number of timeline entries in the session.
func (s Session) Len() int { return len(s.RSIDs) }

// SessionSummary aggregates a session partition.
type SessionSummary struct {
	Sessions                   []Session `json:"sessions"`
	Count                      int       `json:"count"`
	AvgLength                  float64   `json:"avg_length"`
	AvgUniqueRSIDs             float64   `json:"avg_unique_rsids"`
	TotalEditMinutes           int       `json:"total_edit_minutes"`
	EstimatedMinutesPerSession float64   `json:"estimated_minutes_per_session"`
}

// Completeness is the structural completeness estimate.
type Completeness struct {
	HasTitle             bool     `json:"has_title"`
	HasBody              bool     `json:"has_body"`
	HasHeaders           bool     `json:"has_headers"`
	HasConclusion        bool     `json:"has_conclusion"`
	HasReferences        bool     `json:"has_references"`
	ConsistentFormatting bool     `json:"consistent_formatting"`
	Score                float64  `json:"completion_score"`
	IsComplete           bool     `json:"is_complete"`
	Missing              []string `json:"missing"`
	Message              string   `json:"message"`
}

// MisconductAssessment is the final weighted assessment.
type MisconductAssessment struct {
	Indicators []Indicator `json:"indicators"`
	Confidence float64     `json:"confidence"`
	Detected   bool        `json:"detected"`
	Summary    string      `json:"summary"`
	Analysis   string      `json:"analysis"`
}

// Findings bundles the derived forensic results for one document.
type Findings struct {
	Typing       TypingAnalysis       `json:"typing"`
	Sessions     SessionSummary       `json:"sessions"`
	Completeness Completeness         `json:"completeness"`
	Misconduct   MisconductAssessment `json:"misconduct"`
}
