package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ZanMander/Forensic-linguistics/internal/analysis"
	"github.com/ZanMander/Forensic-linguistics/internal/changes"
	"github.com/ZanMander/Forensic-linguistics/internal/forensics"
	"github.com/ZanMander/Forensic-linguistics/internal/formatting"
)

// Terminal palette.
var (
	ColorTitle   = lipgloss.Color("#2CD7C7")
	ColorHeading = lipgloss.Color("#20B9B4")
	ColorMuted   = lipgloss.Color("#666666")
	ColorOK      = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorDanger  = lipgloss.Color("#E74C3C")
)

const ruleWidth = 72

// cautionConfidence colours an undetected verdict amber.
const cautionConfidence = 0.3

type textStyles struct {
	enabled bool
	r       *lipgloss.Renderer

	title   lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	warning lipgloss.Style
	danger  lipgloss.Style
}

func newTextStyles(w io.Writer, enabled bool) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		enabled: enabled,
		r:       r,
		title:   r.NewStyle().Bold(true).Foreground(ColorTitle),
		heading: r.NewStyle().Bold(true).Foreground(ColorHeading),
		muted:   r.NewStyle().Foreground(ColorMuted),
		ok:      r.NewStyle().Foreground(ColorOK),
		warning: r.NewStyle().Foreground(ColorWarning),
		danger:  r.NewStyle().Bold(true).Foreground(ColorDanger),
	}
}

func (s textStyles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

// swatch is a two-cell block in the RSID's colour.
func (s textStyles) swatch(hex string) string {
	if !s.enabled || hex == "" {
		return "  "
	}
	return s.r.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

func (s textStyles) severity(sev forensics.Severity, text string) string {
	switch sev {
	case forensics.SeverityHigh:
		return s.render(s.danger, text)
	case forensics.SeverityMedium:
		return s.render(s.warning, text)
	default:
		return s.render(s.muted, text)
	}
}

func (s textStyles) section(w io.Writer, name string) {
	fmt.Fprintln(w, s.render(s.muted, strings.Repeat("-", ruleWidth)))
	fmt.Fprintln(w, s.render(s.heading, name))
	fmt.Fprintln(w, s.render(s.muted, strings.Repeat("-", ruleWidth)))
	fmt.Fprintln(w)
}

// generateText outputs the report as styled terminal text.
func (g *Generator) generateText(res *analysis.Result, w io.Writer) error {
	st := newTextStyles(w, g.color)

	// Header
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(w, st.render(st.title, "                 DOCUMENT REVISION FORENSICS REPORT"))
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "File:            %s\n", res.FileName)
	fmt.Fprintf(w, "Fingerprint:     %s\n", truncateHash(res.Fingerprint))
	fmt.Fprintf(w, "Size:            %d bytes\n", res.Size)
	fmt.Fprintf(w, "Analyzed:        %s\n", res.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Run ID:          %s\n", res.RunID)
	if res.Degraded {
		fmt.Fprintf(w, "Status:          %s\n", st.render(st.warning, "DEGRADED"))
	}
	for _, note := range res.Notes {
		fmt.Fprintf(w, "  * %s\n", note)
	}
	fmt.Fprintln(w)

	// Metadata
	m := res.Metadata
	st.section(w, "DOCUMENT METADATA")
	fmt.Fprintf(w, "Title:           %s\n", m.Title)
	fmt.Fprintf(w, "Creator:         %s\n", m.Creator)
	fmt.Fprintf(w, "Modified By:     %s\n", m.LastModifiedBy)
	fmt.Fprintf(w, "Authors:         %s\n", authorList(res.Events))
	fmt.Fprintf(w, "Created:         %s\n", m.Created)
	fmt.Fprintf(w, "Modified:        %s\n", m.Modified)
	fmt.Fprintf(w, "Revision:        %d\n", m.Revision)
	fmt.Fprintf(w, "Application:     %s %s\n", m.Application, m.AppVersion)
	fmt.Fprintf(w, "Template:        %s\n", m.Template)
	fmt.Fprintf(w, "Total Edit Time: %d min\n", m.TotalTime)
	fmt.Fprintf(w, "Pages/Words:     %d / %d\n", m.Pages, m.Words)
	fmt.Fprintln(w)

	t := res.Tracking
	fmt.Fprintf(w, "Track Revisions: %s\n", yesNo(t.TrackRevisions))
	fmt.Fprintf(w, "RSID Root:       %s\n", t.RSIDRoot)
	fmt.Fprintf(w, "Declared RSIDs:  %d\n", t.RSIDCount)
	fmt.Fprintf(w, "Tracked Changes: %s\n", yesNo(t.HasTrackedChanges))
	fmt.Fprintln(w)

	// Legend
	shares := WordShares(res.RSID)
	if len(shares) > 0 {
		st.section(w, "RSID LEGEND")
		total := res.RSID.TotalWords()
		for _, s := range shares {
			pct := 0.0
			if total > 0 {
				pct = float64(s.WordCount) / float64(total) * 100
			}
			fmt.Fprintf(w, "%s %-10s %6d words %5.1f%%  %s\n",
				st.swatch(s.Color), s.RSID, s.WordCount, pct,
				forensics.FormatMetricBar(pct, 0, 100, 20))
		}
		fmt.Fprintln(w)
	}

	if g.showRuns && len(res.RSID.Runs) > 0 {
		st.section(w, "TEXT BY REVISION SESSION")
		var sb strings.Builder
		for _, run := range res.RSID.Runs {
			if st.enabled {
				sb.WriteString(st.r.NewStyle().Foreground(lipgloss.Color(run.Color)).Render(run.Text))
			} else {
				sb.WriteString(run.Text)
			}
		}
		fmt.Fprintln(w, st.r.NewStyle().Width(ruleWidth).Render(sb.String()))
		fmt.Fprintln(w)
	}

	// Formatting
	f := res.Formatting
	st.section(w, "FORMATTING CONSISTENCY")
	writeCategory(w, "Fonts", f.Fonts)
	writeCategory(w, "Sizes", f.Sizes)
	writeCategory(w, "Languages", f.Languages)
	sev := fmt.Sprintf("%.2f", f.Severity)
	switch {
	case f.Severity >= forensics.ThresholdFormattingHigh:
		sev = st.render(st.danger, sev)
	case f.Severity >= forensics.ThresholdFormattingMedium:
		sev = st.render(st.warning, sev)
	}
	fmt.Fprintf(w, "Inconsistency:   %s  %s\n\n", sev, forensics.FormatMetricBar(f.Severity, 0, 1, 20))

	// Change timeline
	st.section(w, "CHANGE TIMELINE")
	if len(res.Events) == 0 {
		fmt.Fprintln(w, st.render(st.muted, "No tracked changes, comments or dated properties"))
	}
	for _, e := range res.Events {
		fmt.Fprintf(w, "%-20s %-22s %-16s %s\n", e.Date, e.Type, e.Author, e.Text)
	}
	if len(res.Events) > 0 {
		counts := changes.CountByType(res.Events)
		parts := make([]string, 0, len(counts))
		for _, typ := range eventOrder {
			if n := counts[typ]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", typ, n))
			}
		}
		fmt.Fprintf(w, "\n%s\n", st.render(st.muted, strings.Join(parts, "  ")))
	}
	fmt.Fprintln(w)

	forensics.PrintReport(w, &res.Findings)
	fmt.Fprintln(w)

	for _, ind := range res.Misconduct.Indicators {
		fmt.Fprintf(w, "%s %s\n", st.severity(ind.Severity, fmt.Sprintf("[%-6s]", ind.Severity)), ind.Description)
	}

	verdict := "NO MISCONDUCT DETECTED"
	style := st.ok
	if res.Misconduct.Detected {
		verdict = "POTENTIAL MISCONDUCT DETECTED"
		style = st.danger
	} else if res.Misconduct.Confidence >= cautionConfidence {
		style = st.warning
	}
	fmt.Fprintln(w, st.render(style, verdict))
	return nil
}

var eventOrder = []changes.EventType{
	changes.EventCreation,
	changes.EventInsertion,
	changes.EventDeletion,
	changes.EventFormatChange,
	changes.EventParagraphFormatChange,
	changes.EventMove,
	changes.EventComment,
	changes.EventLastModification,
}

func writeCategory(w io.Writer, label string, c formatting.Category) {
	fmt.Fprintf(w, "%-10s %d distinct over %d runs", label+":", len(c.Values), c.Runs)
	if len(c.Unusual) > 0 {
		fmt.Fprintf(w, "  unusual: %s", strings.Join(c.Unusual, ", "))
	}
	fmt.Fprintln(w)
	for _, v := range c.Values {
		fmt.Fprintf(w, "    %-24s %5.1f%%\n", v, c.Frequency[v]*100)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
