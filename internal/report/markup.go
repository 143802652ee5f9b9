package report

import (
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"

	"github.com/ZanMander/Forensic-linguistics/internal/analysis"
	"github.com/ZanMander/Forensic-linguistics/internal/changes"
)

// view adds computed fields for the templates.
type view struct {
	*analysis.Result
	Summary string
	Verdict string
	Authors string
	Shares  []shareView
}

type shareView struct {
	RSID       string
	WordCount  int
	Percentage float64
	Color      string
}

func newView(res *analysis.Result) view {
	v := view{
		Result:  res,
		Summary: Summary(res),
		Verdict: "No misconduct detected",
		Authors: authorList(res.Events),
	}
	if res.Misconduct.Detected {
		v.Verdict = "Potential misconduct detected"
	}
	total := 0
	if res.RSID != nil {
		total = res.RSID.TotalWords()
	}
	for _, s := range WordShares(res.RSID) {
		pct := 0.0
		if total > 0 {
			pct = float64(s.WordCount) / float64(total) * 100
		}
		v.Shares = append(v.Shares, shareView{RSID: s.RSID, WordCount: s.WordCount, Percentage: pct, Color: s.Color})
	}
	return v
}

// authorList names everyone credited with a tracked change, comment or
// metadata event.
func authorList(events []changes.Event) string {
	authors := changes.Authors(events)
	if len(authors) == 0 {
		return "none recorded"
	}
	return strings.Join(authors, ", ")
}

var funcMap = map[string]any{
	"mult":  func(a, b float64) float64 { return a * b },
	"join":  strings.Join,
	"yesno": yesNo,
	"cell": func(s string) string {
		return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
	},
}

const markdownTemplate = `# Document Revision Forensics Report

**{{.Verdict}}**: {{.Summary}}

## Document

| Property | Value |
|----------|-------|
| File | {{.FileName}} |
| Fingerprint | ` + "`{{.Fingerprint}}`" + ` |
| Size | {{.Size}} bytes |
| Analyzed | {{.AnalyzedAt.Format "2006-01-02 15:04:05 MST"}} |
| Run ID | {{.RunID}} |
| Degraded | {{yesno .Degraded}} |
{{if .Notes}}
{{range .Notes}}- {{.}}
{{end}}{{end}}
## Metadata

| Property | Value |
|----------|-------|
| Title | {{cell .Metadata.Title}} |
| Creator | {{cell .Metadata.Creator}} |
| Last Modified By | {{cell .Metadata.LastModifiedBy}} |
| Authors | {{cell .Authors}} |
| Created | {{.Metadata.Created}} |
| Modified | {{.Metadata.Modified}} |
| Revision | {{.Metadata.Revision}} |
| Application | {{cell .Metadata.Application}} {{cell .Metadata.AppVersion}} |
| Total Edit Time | {{.Metadata.TotalTime}} min |
| Track Revisions | {{yesno .Tracking.TrackRevisions}} |
| RSID Root | {{.Tracking.RSIDRoot}} |
| Declared RSIDs | {{.Tracking.RSIDCount}} |

## RSID Distribution

| RSID | Words | Share |
|------|-------|-------|
{{range .Shares}}| {{.RSID}} | {{.WordCount}} | {{printf "%.1f%%" .Percentage}} |
{{end}}
## Typing Pattern

| Metric | Value |
|--------|-------|
| Total Words | {{.Typing.TotalWords}} |
| RSIDs | {{.Typing.RSIDCount}} |
| Avg Words per RSID | {{printf "%.1f" .Typing.AvgWordsPerRSID}} |
| Max Consecutive Paragraphs | {{.Typing.MaxConsecutiveSegments}} |
| Entropy | {{printf "%.3f" .Typing.Entropy}} |
| Copy-Paste Score | {{printf "%.2f" .Typing.CopyPasteScore}} |
| Manual Typing Score | {{printf "%.2f" .Typing.ManualTypingScore}} |
| Conclusion | {{.Typing.Conclusion}} |

## Sessions

| Metric | Value |
|--------|-------|
| Sessions | {{.Sessions.Count}} |
| Avg Paragraphs per Session | {{printf "%.1f" .Sessions.AvgLength}} |
| Avg RSIDs per Session | {{printf "%.1f" .Sessions.AvgUniqueRSIDs}} |
| Est. Minutes per Session | {{printf "%.1f" .Sessions.EstimatedMinutesPerSession}} |

## Formatting

| Category | Distinct | Unusual |
|----------|----------|---------|
| Fonts | {{len .Formatting.Fonts.Values}} | {{join .Formatting.Fonts.Unusual ", "}} |
| Sizes | {{len .Formatting.Sizes.Values}} | {{join .Formatting.Sizes.Unusual ", "}} |
| Languages | {{len .Formatting.Languages.Values}} | {{join .Formatting.Languages.Unusual ", "}} |

Inconsistency score: {{printf "%.2f" .Formatting.Severity}}

## Completeness

| Element | Present |
|---------|---------|
| Title | {{yesno .Completeness.HasTitle}} |
| Body | {{yesno .Completeness.HasBody}} |
| Headers | {{yesno .Completeness.HasHeaders}} |
| Conclusion | {{yesno .Completeness.HasConclusion}} |
| References | {{yesno .Completeness.HasReferences}} |
| Consistent Formatting | {{yesno .Completeness.ConsistentFormatting}} |

Completion score: {{printf "%.2f" .Completeness.Score}}. {{.Completeness.Message}}

## Change Timeline

| Date | Type | Author | Text |
|------|------|--------|------|
{{range .Events}}| {{.Date}} | {{.Type}} | {{cell .Author}} | {{cell .Text}} |
{{end}}
## Misconduct Assessment

{{range .Misconduct.Indicators}}- **{{.Severity}}** {{.Type}}: {{.Description}}
{{else}}No indicators fired.
{{end}}
- **Confidence:** {{printf "%.2f" .Misconduct.Confidence}}
- **Summary:** {{.Misconduct.Summary}}
`

func (g *Generator) generateMarkdown(res *analysis.Result, w io.Writer) error {
	t, err := template.New("report").Funcs(funcMap).Parse(markdownTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, newView(res))
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Revision Forensics: {{.FileName}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; }
        h1 { color: #333; }
        .verdict-clear { color: #28a745; }
        .verdict-flagged { color: #dc3545; }
        .summary { background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0; }
        table { width: 100%; border-collapse: collapse; margin: 15px 0; }
        th, td { padding: 8px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background: #f8f9fa; }
        .sev-High { color: #dc3545; font-weight: bold; }
        .sev-Medium { color: #b8860b; }
        .sev-Low { color: #6c757d; }
        .swatch { display: inline-block; width: 1em; height: 1em; border-radius: 2px; vertical-align: middle; }
        .runs { line-height: 1.8; padding: 15px; border: 1px solid #ddd; border-radius: 5px; }
        .notes { background: #fff3cd; padding: 15px; border-radius: 5px; margin: 15px 0; }
        code { background: #e9ecef; padding: 2px 6px; border-radius: 3px; font-family: 'Courier New', monospace; }
    </style>
</head>
<body>
    <h1>Document Revision Forensics Report</h1>

    <div class="summary">
        <h2 class="{{if .Misconduct.Detected}}verdict-flagged{{else}}verdict-clear{{end}}">{{.Verdict}}</h2>
        <p><strong>Confidence:</strong> {{printf "%.1f%%" (mult .Misconduct.Confidence 100)}}</p>
        <p>{{.Misconduct.Summary}}</p>
    </div>

    {{if .Notes}}
    <div class="notes">
        <ul>{{range .Notes}}<li>{{.}}</li>{{end}}</ul>
    </div>
    {{end}}

    <h2>Document</h2>
    <table>
        <tr><th>File</th><td>{{.FileName}}</td></tr>
        <tr><th>Fingerprint</th><td><code>{{.Fingerprint}}</code></td></tr>
        <tr><th>Size</th><td>{{.Size}} bytes</td></tr>
        <tr><th>Analyzed</th><td>{{.AnalyzedAt.Format "2006-01-02 15:04:05 MST"}}</td></tr>
        <tr><th>Run ID</th><td>{{.RunID}}</td></tr>
    </table>

    <h2>Metadata</h2>
    <table>
        <tr><th>Title</th><td>{{.Metadata.Title}}</td></tr>
        <tr><th>Creator</th><td>{{.Metadata.Creator}}</td></tr>
        <tr><th>Last Modified By</th><td>{{.Metadata.LastModifiedBy}}</td></tr>
        <tr><th>Authors</th><td>{{.Authors}}</td></tr>
        <tr><th>Created</th><td>{{.Metadata.Created}}</td></tr>
        <tr><th>Modified</th><td>{{.Metadata.Modified}}</td></tr>
        <tr><th>Revision</th><td>{{.Metadata.Revision}}</td></tr>
        <tr><th>Application</th><td>{{.Metadata.Application}} {{.Metadata.AppVersion}}</td></tr>
        <tr><th>Company</th><td>{{.Metadata.Company}}</td></tr>
        <tr><th>Template</th><td>{{.Metadata.Template}}</td></tr>
        <tr><th>Total Edit Time</th><td>{{.Metadata.TotalTime}} min</td></tr>
        <tr><th>Pages / Words / Characters</th><td>{{.Metadata.Pages}} / {{.Metadata.Words}} / {{.Metadata.Characters}}</td></tr>
        <tr><th>Track Revisions</th><td>{{yesno .Tracking.TrackRevisions}}</td></tr>
        <tr><th>RSID Root</th><td>{{.Tracking.RSIDRoot}}</td></tr>
        <tr><th>Declared RSIDs</th><td>{{.Tracking.RSIDCount}}</td></tr>
        <tr><th>Tracked Changes</th><td>{{yesno .Tracking.HasTrackedChanges}}</td></tr>
    </table>

    <h2>RSID Legend</h2>
    <table>
        <thead><tr><th></th><th>RSID</th><th>Words</th><th>Share</th></tr></thead>
        <tbody>
            {{range .Shares}}
            <tr>
                <td><span class="swatch" style="background-color: {{.Color}}"></span></td>
                <td><code>{{.RSID}}</code></td>
                <td>{{.WordCount}}</td>
                <td>{{printf "%.1f%%" .Percentage}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <h2>Text by Revision Session</h2>
    <div class="runs">{{range .RSID.Runs}}<span style="background-color: {{.Color}}" title="{{.RSID}}">{{.Text}}</span>{{end}}</div>

    <h2>Typing Pattern</h2>
    <table>
        <tr><th>Total Words</th><td>{{.Typing.TotalWords}}</td></tr>
        <tr><th>RSIDs</th><td>{{.Typing.RSIDCount}}</td></tr>
        <tr><th>Avg Words per RSID</th><td>{{printf "%.1f" .Typing.AvgWordsPerRSID}}</td></tr>
        <tr><th>Avg Words per Segment</th><td>{{printf "%.1f" .Typing.AvgWordsPerSegment}}</td></tr>
        <tr><th>Std Dev of Words</th><td>{{printf "%.1f" .Typing.StdDevWords}}</td></tr>
        <tr><th>Max Consecutive Paragraphs</th><td>{{.Typing.MaxConsecutiveSegments}}</td></tr>
        <tr><th>Entropy</th><td>{{printf "%.3f" .Typing.Entropy}}</td></tr>
        <tr><th>Copy-Paste Score</th><td>{{printf "%.2f" .Typing.CopyPasteScore}}</td></tr>
        <tr><th>Manual Typing Score</th><td>{{printf "%.2f" .Typing.ManualTypingScore}}</td></tr>
        <tr><th>Conclusion</th><td>{{.Typing.Conclusion}}</td></tr>
    </table>

    <h2>Sessions</h2>
    <table>
        <tr><th>Sessions</th><td>{{.Sessions.Count}}</td></tr>
        <tr><th>Avg Paragraphs per Session</th><td>{{printf "%.1f" .Sessions.AvgLength}}</td></tr>
        <tr><th>Avg RSIDs per Session</th><td>{{printf "%.1f" .Sessions.AvgUniqueRSIDs}}</td></tr>
        <tr><th>Est. Minutes per Session</th><td>{{printf "%.1f" .Sessions.EstimatedMinutesPerSession}}</td></tr>
    </table>

    <h2>Formatting</h2>
    <table>
        <thead><tr><th>Category</th><th>Values</th><th>Unusual</th></tr></thead>
        <tbody>
            <tr><td>Fonts</td><td>{{join .Formatting.Fonts.Values ", "}}</td><td>{{join .Formatting.Fonts.Unusual ", "}}</td></tr>
            <tr><td>Sizes</td><td>{{join .Formatting.Sizes.Values ", "}}</td><td>{{join .Formatting.Sizes.Unusual ", "}}</td></tr>
            <tr><td>Languages</td><td>{{join .Formatting.Languages.Values ", "}}</td><td>{{join .Formatting.Languages.Unusual ", "}}</td></tr>
        </tbody>
    </table>
    <p><strong>Inconsistency score:</strong> {{printf "%.2f" .Formatting.Severity}}</p>

    <h2>Completeness</h2>
    <table>
        <tr><th>Title</th><td>{{yesno .Completeness.HasTitle}}</td></tr>
        <tr><th>Body</th><td>{{yesno .Completeness.HasBody}}</td></tr>
        <tr><th>Headers</th><td>{{yesno .Completeness.HasHeaders}}</td></tr>
        <tr><th>Conclusion</th><td>{{yesno .Completeness.HasConclusion}}</td></tr>
        <tr><th>References</th><td>{{yesno .Completeness.HasReferences}}</td></tr>
        <tr><th>Consistent Formatting</th><td>{{yesno .Completeness.ConsistentFormatting}}</td></tr>
        <tr><th>Completion Score</th><td>{{printf "%.2f" .Completeness.Score}}</td></tr>
    </table>
    <p>{{.Completeness.Message}}</p>

    <h2>Change Timeline</h2>
    <table>
        <thead><tr><th>Date</th><th>Type</th><th>Author</th><th>Text</th></tr></thead>
        <tbody>
            {{range .Events}}
            <tr><td>{{.Date}}</td><td>{{.Type}}</td><td>{{.Author}}</td><td>{{.Text}}</td></tr>
            {{end}}
        </tbody>
    </table>

    <h2>Misconduct Indicators</h2>
    {{if .Misconduct.Indicators}}
    <ul>
        {{range .Misconduct.Indicators}}<li><span class="sev-{{.Severity}}">{{.Severity}}</span> {{.Type}}: {{.Description}}</li>{{end}}
    </ul>
    {{else}}
    <p>No indicators fired.</p>
    {{end}}
    <p>{{.Misconduct.Analysis}}</p>

    <footer style="margin-top: 30px; padding-top: 15px; border-top: 1px solid #ddd; color: #6c757d;">
        {{.Summary}}
    </footer>
</body>
</html>`

func (g *Generator) generateHTML(res *analysis.Result, w io.Writer) error {
	t, err := htmltemplate.New("report").Funcs(funcMap).Parse(htmlTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, newView(res))
}
