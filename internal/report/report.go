// Package report renders analysis results for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ZanMander/Forensic-linguistics/internal/analysis"
	"github.com/ZanMander/Forensic-linguistics/internal/rsid"
)

// Format specifies the output format for reports.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat maps a name to a Format. Matching is case-insensitive and
// "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown report format: %q", s)
	}
}

// Generator renders a Result in one format.
type Generator struct {
	format   Format
	showRuns bool
	color    bool
}

// NewGenerator creates a generator. Colour is on by default and only
// affects the text format.
func NewGenerator(format Format) *Generator {
	return &Generator{format: format, color: true}
}

// WithRuns includes the RSID-coloured text runs in text output.
func (g *Generator) WithRuns(show bool) *Generator {
	g.showRuns = show
	return g
}

// WithColor enables or disables terminal styling.
func (g *Generator) WithColor(color bool) *Generator {
	g.color = color
	return g
}

// Format returns the configured format.
func (g *Generator) Format() Format {
	return g.format
}

// Generate writes res to w.
func (g *Generator) Generate(res *analysis.Result, w io.Writer) error {
	if res == nil {
		return fmt.Errorf("nil result")
	}
	switch g.format {
	case FormatJSON:
		return g.generateJSON(res, w)
	case FormatText:
		return g.generateText(res, w)
	case FormatMarkdown:
		return g.generateMarkdown(res, w)
	case FormatHTML:
		return g.generateHTML(res, w)
	default:
		return fmt.Errorf("unknown format: %s", g.format)
	}
}

func (g *Generator) generateJSON(res *analysis.Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(res)
}

// Summary generates a one-line summary of the result.
func Summary(res *analysis.Result) string {
	var sb strings.Builder

	if res.Misconduct.Detected {
		sb.WriteString("[FLAGGED]")
	} else {
		sb.WriteString("[CLEAR]")
	}
	sb.WriteString(" " + res.FileName)
	sb.WriteString(fmt.Sprintf(" - confidence %.0f%%", res.Misconduct.Confidence*100))
	sb.WriteString(fmt.Sprintf(", copy-paste %.2f", res.Typing.CopyPasteScore))
	sb.WriteString(fmt.Sprintf(", %d sessions", res.Sessions.Count))
	sb.WriteString(fmt.Sprintf(", %.0f%% complete", res.Completeness.Score*100))
	if res.Degraded {
		sb.WriteString(" (degraded)")
	}
	return sb.String()
}

// WordShare is one CSV row.
type WordShare struct {
	RSID      string
	WordCount int
	Color     string
}

// WordShares lists RSIDs by word count descending, ties by first
// appearance.
func WordShares(x *rsid.Extraction) []WordShare {
	if x == nil {
		return nil
	}
	rows := make([]WordShare, 0, len(x.Order))
	for _, id := range x.Order {
		a := x.Aggregates[id]
		if a == nil {
			continue
		}
		rows = append(rows, WordShare{RSID: id, WordCount: a.WordCount, Color: x.Colors[id]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].WordCount > rows[j].WordCount
	})
	return rows
}

func truncateHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:8] + "..." + hash[len(hash)-8:]
}
