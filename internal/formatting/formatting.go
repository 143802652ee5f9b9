// Package formatting measures run-level formatting consistency across a
// document body.
package formatting

import (
	"sort"

	"github.com/beevik/etree"

	"github.com/ZanMander/Forensic-linguistics/internal/docx"
)

// UnusualFrequency is the share of runs below which a value is unusual.
const UnusualFrequency = 0.05

// Detection thresholds on distinct value counts.
const (
	MaxConsistentFonts     = 2
	MaxConsistentSizes     = 3
	MaxConsistentLanguages = 2
)

// Severity weights.
const (
	WeightFonts            = 0.2
	WeightSizes            = 0.1
	WeightLanguages        = 0.2
	WeightUnusualFonts     = 0.2
	WeightUnusualSizes     = 0.1
	WeightUnusualLanguages = 0.2
)

// Category is the distribution of one formatting attribute.
type Category struct {
	Values    []string           `json:"values"`
	Frequency map[string]float64 `json:"frequency"`
	Unusual   []string           `json:"unusual"`
	Runs      int                `json:"runs"`
}

// Profile is the formatting-consistency result for a document.
type Profile struct {
	Fonts     Category `json:"fonts"`
	Sizes     Category `json:"sizes"`
	Languages Category `json:"languages"`
	Detected  bool     `json:"detected"`
	Severity  float64  `json:"severity"`
}

// counter tallies one category, counting a value at most once per run.
type counter struct {
	counts map[string]int
	runs   int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) addRun(values []string) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		c.counts[v]++
	}
	if len(seen) > 0 {
		c.runs++
	}
}

func (c *counter) category() Category {
	cat := Category{
		Values:    make([]string, 0, len(c.counts)),
		Frequency: make(map[string]float64, len(c.counts)),
		Unusual:   []string{},
		Runs:      c.runs,
	}
	for v, n := range c.counts {
		cat.Values = append(cat.Values, v)
		freq := 0.0
		if c.runs > 0 {
			freq = float64(n) / float64(c.runs)
		}
		cat.Frequency[v] = freq
		if freq < UnusualFrequency {
			cat.Unusual = append(cat.Unusual, v)
		}
	}
	sort.Strings(cat.Values)
	sort.Strings(cat.Unusual)
	return cat
}

var (
	fontSlots = []string{"ascii", "hAnsi", "cs", "eastAsia"}
	langSlots = []string{"val", "eastAsia", "bidi"}
)

// Analyze scans every run's properties in body. A nil body yields an empty,
// undetected profile.
//
// Frequencies are per category. Each value is divided by the number of runs
// that declare at least one value of that category, so a run that sets only
// a font does not make every size look rare. Within one run a value counts
// once even when several slots name it (ascii and hAnsi usually agree),
// which keeps every frequency within [0, 1].
func Analyze(body *etree.Element) Profile {
	fonts, sizes, langs := newCounter(), newCounter(), newCounter()

	for _, r := range docx.FindAll(body, docx.W("r")) {
		rPr := docx.Child(r, docx.W("rPr"))
		if rPr == nil {
			continue
		}
		fonts.addRun(slotValues(docx.Child(rPr, docx.W("rFonts")), fontSlots))
		if sz, ok := docx.Val(rPr, docx.W("sz")); ok {
			sizes.addRun([]string{sz})
		}
		langs.addRun(slotValues(docx.Child(rPr, docx.W("lang")), langSlots))
	}

	p := Profile{
		Fonts:     fonts.category(),
		Sizes:     sizes.category(),
		Languages: langs.category(),
	}
	p.Detected = len(p.Fonts.Values) > MaxConsistentFonts ||
		len(p.Sizes.Values) > MaxConsistentSizes ||
		len(p.Languages.Values) > MaxConsistentLanguages ||
		len(p.Fonts.Unusual) > 0 ||
		len(p.Sizes.Unusual) > 0 ||
		len(p.Languages.Unusual) > 0
	p.Severity = Severity(p)
	return p
}

// Severity combines distinct and unusual value counts into a score in
// [0, 1]. Terms may be negative before clamping.
// Formula: 0.2(f-1) + 0.1(s-2) + 0.2(l-1) + 0.2uf + 0.1us + 0.2ul
func Severity(p Profile) float64 {
	score := WeightFonts*float64(len(p.Fonts.Values)-1) +
		WeightSizes*float64(len(p.Sizes.Values)-2) +
		WeightLanguages*float64(len(p.Languages.Values)-1) +
		WeightUnusualFonts*float64(len(p.Fonts.Unusual)) +
		WeightUnusualSizes*float64(len(p.Sizes.Unusual)) +
		WeightUnusualLanguages*float64(len(p.Languages.Unusual))
	return clamp01(score)
}

func slotValues(e *etree.Element, slots []string) []string {
	if e == nil {
		return nil
	}
	var out []string
	for _, slot := range slots {
		if v, ok := docx.Attr(e, docx.W(slot)); ok {
			out = append(out, v)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
