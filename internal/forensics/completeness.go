package forensics

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/cases"

	"github.com/ZanMander/Forensic-linguistics/internal/docx"
	"github.com/ZanMander/Forensic-linguistics/internal/rsid"
)

// Completeness weights. They sum to 1.
const (
	WeightTitle      = 0.10
	WeightBody       = 0.30
	WeightHeaders    = 0.15
	WeightConclusion = 0.20
	WeightReferences = 0.15
	WeightFormatting = 0.10

	// CompleteThreshold is the score at which a document counts as complete.
	CompleteThreshold = 0.7

	// MinBodyParagraphs is exceeded by documents with a body.
	MinBodyParagraphs = 3

	conclusionWindow = 5
	referenceWindow  = 10
)

// HeadingPrefix marks heading style IDs and names.
const HeadingPrefix = "Heading"

var (
	conclusionKeywords = []string{"conclusion", "summary", "finally", "in conclusion", "to conclude"}
	referenceKeywords  = []string{"references", "bibliography", "works cited", "sources"}
)

// HeadingStyles returns the IDs of styles in the styles part whose name
// starts with "heading", case-insensitively. This catches localized style
// IDs whose display name is still "heading N". A nil root yields an empty set.
func HeadingStyles(styles *etree.Element) map[string]bool {
	out := make(map[string]bool)
	fold := cases.Fold()
	prefix := fold.String(HeadingPrefix)
	for _, s := range docx.FindAll(styles, docx.W("style")) {
		id, ok := docx.Attr(s, docx.W("styleId"))
		if !ok {
			continue
		}
		name, _ := docx.Val(s, docx.W("name"))
		if strings.HasPrefix(fold.String(name), prefix) {
			out[id] = true
		}
	}
	return out
}

// EstimateCompleteness scores the structural completeness of a document from
// its paragraphs in order. headingStyles may be nil.
//
// Blank paragraphs are dropped before anything is counted. The title, the
// body threshold and both keyword windows (the last 5 paragraphs for a
// conclusion, the last 10 for references) all see only paragraphs with
// text, so trailing empty lines after a conclusion do not push it out of
// its window.
func EstimateCompleteness(paragraphs []rsid.Paragraph, headingStyles map[string]bool, formattingDetected bool) Completeness {
	fold := cases.Fold()

	var texts []string
	c := Completeness{ConsistentFormatting: !formattingDetected}
	for _, p := range paragraphs {
		if strings.HasPrefix(p.Style, HeadingPrefix) || headingStyles[p.Style] {
			c.HasHeaders = true
		}
		if t := strings.TrimSpace(p.Text); t != "" {
			texts = append(texts, fold.String(t))
		}
	}

	c.HasTitle = len(texts) > 0
	c.HasBody = len(texts) > MinBodyParagraphs
	c.HasConclusion = containsAny(tail(texts, conclusionWindow), conclusionKeywords)
	c.HasReferences = containsAny(tail(texts, referenceWindow), referenceKeywords)

	score := 0.0
	c.Missing = []string{}
	for _, part := range []struct {
		present bool
		weight  float64
		name    string
	}{
		{c.HasTitle, WeightTitle, "title"},
		{c.HasBody, WeightBody, "body"},
		{c.HasHeaders, WeightHeaders, "headers"},
		{c.HasConclusion, WeightConclusion, "conclusion"},
		{c.HasReferences, WeightReferences, "references"},
		{c.ConsistentFormatting, WeightFormatting, "consistent formatting"},
	} {
		if part.present {
			score += part.weight
		} else {
			c.Missing = append(c.Missing, part.name)
		}
	}
	c.Score = clampScore(score)
	c.IsComplete = c.Score >= CompleteThreshold

	if len(c.Missing) == 0 {
		c.Message = "Document appears structurally complete"
	} else {
		c.Message = "Missing elements: " + strings.Join(c.Missing, ", ")
	}
	return c
}

func tail(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// containsAny reports whether any text contains any keyword. Texts are
// already case-folded; keywords are lower case.
func containsAny(texts, keywords []string) bool {
	for _, t := range texts {
		for _, k := range keywords {
			if strings.Contains(t, k) {
				return true
			}
		}
	}
	return false
}
