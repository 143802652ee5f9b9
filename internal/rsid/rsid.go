// Package rsid extracts revision-save identifiers (RSIDs) from a document
// body and aggregates per-identifier text statistics.
//
// RSIDs are opaque tokens written by the authoring tool once per editing
// session. They carry no timestamp, so the timeline built here is in
// document order, not wall-clock order.
package rsid

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/ZanMander/Forensic-linguistics/internal/docx"
)

// Unknown is the RSID of paragraphs that carry no identifier.
const Unknown = "Unknown"

// Run is one span of literal text with the RSID it is attributed to.
type Run struct {
	Text     string   `json:"text"`
	RSID     string   `json:"rsid"`
	Color    string   `json:"color"`
	Fonts    []string `json:"fonts,omitempty"`
	Size     string   `json:"size,omitempty"`
	Language string   `json:"language,omitempty"`
}

// Aggregate holds the statistics of one RSID. Set-valued fields are sorted.
//
// Invariant: 0 <= ConsecutiveCount <= SegmentCount.
type Aggregate struct {
	WordCount        int      `json:"word_count"`
	CharacterCount   int      `json:"character_count"`
	SegmentCount     int      `json:"segment_count"`
	ConsecutiveCount int      `json:"consecutive_count"`
	Fonts            []string `json:"fonts"`
	Sizes            []string `json:"sizes"`
	Styles           []string `json:"styles"`
	TextIDs          []string `json:"text_ids"`
	Authors          []string `json:"authors"`
	Timestamps       []string `json:"timestamps"`
}

// Paragraph is the plain text and style of one body paragraph.
type Paragraph struct {
	RSID  string `json:"rsid"`
	Style string `json:"style,omitempty"`
	Text  string `json:"text"`
}

// Extraction is the output of one pass over a document body.
type Extraction struct {
	Runs       []Run                 `json:"runs"`
	Colors     map[string]string     `json:"colors"`
	Order      []string              `json:"order"`
	Timeline   []string              `json:"timeline"`
	Aggregates map[string]*Aggregate `json:"aggregates"`
	Paragraphs []Paragraph           `json:"paragraphs"`
}

// TotalWords sums word counts across all RSIDs.
func (x *Extraction) TotalWords() int {
	total := 0
	for _, a := range x.Aggregates {
		total += a.WordCount
	}
	return total
}

// Empty returns an extraction with every collection initialized and no data.
func Empty() *Extraction {
	return &Extraction{
		Runs:       []Run{},
		Colors:     map[string]string{},
		Order:      []string{},
		Timeline:   []string{},
		Aggregates: map[string]*Aggregate{},
		Paragraphs: []Paragraph{},
	}
}

// builder accumulates one RSID's statistics before finalization.
type builder struct {
	words       int
	chars       int
	segments    int
	consecutive int
	fonts       map[string]struct{}
	sizes       map[string]struct{}
	styles      map[string]struct{}
	textIDs     map[string]struct{}
}

func newBuilder() *builder {
	return &builder{
		fonts:   make(map[string]struct{}),
		sizes:   make(map[string]struct{}),
		styles:  make(map[string]struct{}),
		textIDs: make(map[string]struct{}),
	}
}

func (b *builder) finalize() *Aggregate {
	consecutive := b.consecutive
	if consecutive > b.segments {
		consecutive = b.segments
	}
	return &Aggregate{
		WordCount:        b.words,
		CharacterCount:   b.chars,
		SegmentCount:     b.segments,
		ConsecutiveCount: consecutive,
		Fonts:            sortedKeys(b.fonts),
		Sizes:            sortedKeys(b.sizes),
		Styles:           sortedKeys(b.styles),
		TextIDs:          sortedKeys(b.textIDs),
		Authors:          []string{},
		Timestamps:       []string{},
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// fontSlots are the w:rFonts attributes read, in order.
var fontSlots = []string{"ascii", "hAnsi", "cs", "eastAsia"}

// Extract walks body paragraphs in document order. A nil body yields an
// empty extraction.
func Extract(body *etree.Element) *Extraction {
	x := Empty()
	if body == nil {
		return x
	}

	palette := NewPalette()
	builders := make(map[string]*builder)
	get := func(id string) *builder {
		b, ok := builders[id]
		if !ok {
			b = newBuilder()
			builders[id] = b
		}
		return b
	}

	prev := ""
	for i, p := range docx.FindAll(body, docx.W("p")) {
		pid := paragraphRSID(p)
		palette.Color(pid)
		x.Timeline = append(x.Timeline, pid)

		pb := get(pid)
		if i > 0 && pid == prev {
			pb.consecutive++
		}
		prev = pid

		if tid, ok := docx.Attr(p, docx.W14("textId")); ok && tid != "" {
			pb.textIDs[tid] = struct{}{}
		}

		pPr := docx.Child(p, docx.W("pPr"))
		pStyle, _ := docx.Val(pPr, docx.W("pStyle"))

		var text strings.Builder
		for _, r := range docx.OwnRuns(p) {
			rid := docx.AttrOr(r, docx.W("rsidR"), pid)
			color := palette.Color(rid)
			rb := get(rid)

			rPr := docx.Child(r, docx.W("rPr"))
			fonts := runFonts(rPr)
			for _, f := range fonts {
				rb.fonts[f] = struct{}{}
			}
			size, _ := docx.Val(rPr, docx.W("sz"))
			if size != "" {
				rb.sizes[size] = struct{}{}
			}
			style, _ := docx.Val(rPr, docx.W("rStyle"))
			if style == "" {
				style = pStyle
			}
			if style != "" {
				rb.styles[style] = struct{}{}
			}
			lang, _ := docx.Val(rPr, docx.W("lang"))

			t := docx.RunText(r, docx.W("t"))
			if t == "" {
				continue
			}
			text.WriteString(t)

			x.Runs = append(x.Runs, Run{
				Text:     t,
				RSID:     rid,
				Color:    color,
				Fonts:    fonts,
				Size:     size,
				Language: lang,
			})
			rb.words += len(strings.Fields(t))
			rb.chars += utf8.RuneCountInString(t)
			rb.segments++
		}

		x.Paragraphs = append(x.Paragraphs, Paragraph{RSID: pid, Style: pStyle, Text: text.String()})
	}

	for id, b := range builders {
		x.Aggregates[id] = b.finalize()
	}
	x.Colors = palette.Map()
	x.Order = palette.Order()
	return x
}

// paragraphRSID prefers w:rsidR, then w:rsidP.
func paragraphRSID(p *etree.Element) string {
	if v, ok := docx.Attr(p, docx.W("rsidR")); ok && v != "" {
		return v
	}
	if v, ok := docx.Attr(p, docx.W("rsidP")); ok && v != "" {
		return v
	}
	return Unknown
}

// runFonts returns the distinct fonts named by w:rFonts, in slot order.
func runFonts(rPr *etree.Element) []string {
	rFonts := docx.Child(rPr, docx.W("rFonts"))
	if rFonts == nil {
		return nil
	}
	var fonts []string
	seen := make(map[string]bool, len(fontSlots))
	for _, slot := range fontSlots {
		f, ok := docx.Attr(rFonts, docx.W(slot))
		if !ok || f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fonts = append(fonts, f)
	}
	return fonts
}
