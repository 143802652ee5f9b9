package forensics

import (
	"fmt"
	"io"
	"strings"
)

// PrintReport writes the forensic findings as plain text to w.
func PrintReport(w io.Writer, f *Findings) {
	if f == nil {
		fmt.Fprintln(w, "No forensic findings available")
		return
	}

	ta := f.Typing

	// Typing pattern
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintln(w, "TYPING PATTERN ANALYSIS")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total Words:              %d\n", ta.TotalWords)
	fmt.Fprintf(w, "Revision Sessions:        %d\n", ta.RSIDCount)
	fmt.Fprintf(w, "Avg Words per RSID:       %.1f\n", ta.AvgWordsPerRSID)
	fmt.Fprintf(w, "Avg Words per Segment:    %.1f\n", ta.AvgWordsPerSegment)
	fmt.Fprintf(w, "Std Dev of Words:         %.1f\n", ta.StdDevWords)
	fmt.Fprintf(w, "Max Consecutive Paras:    %d\n", ta.MaxConsecutiveSegments)
	fmt.Fprintf(w, "Avg Consecutive Paras:    %.2f\n", ta.AvgConsecutiveSegments)
	fmt.Fprintf(w, "RSID Entropy:             %.3f\n", ta.Entropy)
	fmt.Fprintf(w, "  -> %s\n\n", interpretEntropy(ta.Entropy))

	if len(ta.TopRSIDs) > 0 {
		fmt.Fprintln(w, "Top RSIDs by word count:")
		for _, s := range ta.TopRSIDs {
			fmt.Fprintf(w, "  %-12s %6d words  %5.1f%%  %s\n",
				s.RSID, s.WordCount, s.Percentage, FormatMetricBar(s.Percentage, 0, 100, 20))
		}
		fmt.Fprintln(w)
	}

	if len(ta.LargeBlocks) > 0 {
		fmt.Fprintln(w, "Large contiguous blocks:")
		for _, b := range ta.LargeBlocks {
			fmt.Fprintf(w, "  %-12s %6d words over %d consecutive paragraphs\n",
				b.RSID, b.WordCount, b.ConsecutiveCount)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Copy-Paste Score:         %.2f  %s\n", ta.CopyPasteScore, FormatMetricBar(ta.CopyPasteScore, 0, 1, 20))
	fmt.Fprintf(w, "Manual Typing Score:      %.2f  %s\n", ta.ManualTypingScore, FormatMetricBar(ta.ManualTypingScore, 0, 1, 20))
	fmt.Fprintf(w, "  -> %s\n\n", ta.Conclusion)

	// Sessions
	s := f.Sessions
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintln(w, "EDITING SESSIONS")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sessions:                 %d\n", s.Count)
	fmt.Fprintf(w, "Avg Paragraphs/Session:   %.1f\n", s.AvgLength)
	fmt.Fprintf(w, "Avg RSIDs/Session:        %.1f\n", s.AvgUniqueRSIDs)
	if s.TotalEditMinutes > 0 {
		fmt.Fprintf(w, "Total Edit Time:          %d min\n", s.TotalEditMinutes)
		fmt.Fprintf(w, "Est. Time per Session:    %.1f min\n", s.EstimatedMinutesPerSession)
	}
	fmt.Fprintln(w)

	// Completeness
	c := f.Completeness
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintln(w, "DOCUMENT COMPLETENESS")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Title: %s  Body: %s  Headers: %s  Conclusion: %s  References: %s  Formatting: %s\n",
		check(c.HasTitle), check(c.HasBody), check(c.HasHeaders),
		check(c.HasConclusion), check(c.HasReferences), check(c.ConsistentFormatting))
	fmt.Fprintf(w, "Completion Score:         %.2f  %s\n", c.Score, FormatMetricBar(c.Score, 0, 1, 20))
	fmt.Fprintf(w, "  -> %s\n\n", c.Message)

	// Misconduct
	m := f.Misconduct
	if len(m.Indicators) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 72))
		fmt.Fprintln(w, "MISCONDUCT INDICATORS")
		fmt.Fprintln(w, strings.Repeat("-", 72))
		fmt.Fprintln(w)

		for i, ind := range m.Indicators {
			fmt.Fprintf(w, "%d. [%s] %s: %s\n", i+1, severityMarker(ind.Severity), ind.Type, ind.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "CONFIDENCE: %.2f  %s\n", m.Confidence, FormatMetricBar(m.Confidence, 0, 1, 20))
	fmt.Fprintf(w, "ASSESSMENT: %s\n", m.Summary)
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

// FormatMetricBar produces ASCII progress bar for metric visualization.
func FormatMetricBar(value, min, max float64, width int) string {
	if width <= 0 {
		return ""
	}
	if max <= min {
		return strings.Repeat("-", width)
	}

	// Normalize value to 0-1 range
	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	filled := int(normalized * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
	return "[" + bar + "]"
}

// interpretEntropy provides human-readable interpretation.
func interpretEntropy(entropy float64) string {
	switch {
	case entropy == 0:
		return "Single revision session: no distribution to measure"
	case entropy < 1.0:
		return "Very low: Text concentrated in very few sessions"
	case entropy < 2.0:
		return "Low: Text concentrated in a few sessions"
	case entropy < 3.0:
		return "Moderate: Text spread over several sessions"
	default:
		return "High: Text spread over many sessions (typical of drafting)"
	}
}

// severityMarker returns a visual marker for severity levels.
func severityMarker(s Severity) string {
	switch s {
	case SeverityHigh:
		return "!!!"
	case SeverityMedium:
		return " ! "
	case SeverityLow:
		return " i "
	default:
		return "   "
	}
}

func check(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
