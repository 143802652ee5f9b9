// Package changes scans tracked-change markup and comments and builds a
// chronologically sorted event timeline.
package changes

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/ZanMander/Forensic-linguistics/internal/docx"
	"github.com/ZanMander/Forensic-linguistics/internal/metadata"
)

// EventType tags the kind of change event.
type EventType string

const (
	EventCreation              EventType = "Creation"
	EventInsertion             EventType = "Insertion"
	EventDeletion              EventType = "Deletion"
	EventFormatChange          EventType = "FormatChange"
	EventParagraphFormatChange EventType = "ParagraphFormatChange"
	EventMove                  EventType = "Move"
	EventComment               EventType = "Comment"
	EventLastModification      EventType = "LastModification"
)

// MaxDisplayText is the display-text length above which text is truncated.
const MaxDisplayText = 50

// Ellipsis marks truncated display text.
const Ellipsis = "..."

// Unknown is the author and date of events that do not carry them.
const Unknown = "Unknown"

// Sentinel is the timestamp of events whose date cannot be parsed.
var Sentinel = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Event is one entry in the change timeline.
type Event struct {
	Type      EventType `json:"type"`
	Author    string    `json:"author"`
	Date      string    `json:"date"`
	Text      string    `json:"text"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// dateLayouts are tried in order after RFC 3339.
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 timestamp with or without a zone, or a plain
// date. Anything else yields Sentinel.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == Unknown {
		return Sentinel
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return Sentinel
}

// Truncate shortens text for display.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxDisplayText {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxDisplayText]) + Ellipsis
}

// kind describes how one tracked-change element yields an event.
type kind struct {
	name      string
	eventType EventType
	text      func(e *etree.Element) string
}

var kinds = []kind{
	{"ins", EventInsertion, func(e *etree.Element) string { return docx.TextOf(e, docx.W("t")) }},
	{"del", EventDeletion, func(e *etree.Element) string { return docx.TextOf(e, docx.W("delText")) }},
	{"moveFrom", EventMove, moveText},
	{"rPrChange", EventFormatChange, func(e *etree.Element) string {
		return docx.RunText(docx.Ancestor(e, docx.W("r")), docx.W("t"))
	}},
	{"pPrChange", EventParagraphFormatChange, func(e *etree.Element) string {
		return docx.ParagraphText(docx.Ancestor(e, docx.W("p")))
	}},
}

// moveText reads moved text from w:t, falling back to w:delText since
// moveFrom runs are usually written as deleted text.
func moveText(e *etree.Element) string {
	if t := docx.TextOf(e, docx.W("t")); t != "" {
		return t
	}
	return docx.TextOf(e, docx.W("delText"))
}

// Scan collects tracked changes from body, comments from the comments part
// and creation/modification markers from meta, then sorts them by timestamp.
// Any root may be nil.
func Scan(body, comments *etree.Element, meta metadata.Document) []Event {
	events := []Event{}

	for _, k := range kinds {
		for _, e := range docx.FindAll(body, docx.W(k.name)) {
			events = append(events, newEvent(k.eventType, e, k.text(e)))
		}
	}

	for _, c := range docx.FindAll(comments, docx.W("comment")) {
		var paras []string
		for _, p := range docx.FindAll(c, docx.W("p")) {
			paras = append(paras, docx.ParagraphText(p))
		}
		events = append(events, newEvent(EventComment, c, strings.Join(paras, "\n")))
	}

	events = appendMetadataEvents(events, meta)

	for i := range events {
		events[i].Timestamp = ParseDate(events[i].Date)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}

func newEvent(t EventType, e *etree.Element, text string) Event {
	author := docx.AttrOr(e, docx.W("author"), Unknown)
	if author == "" {
		author = Unknown
	}
	date := docx.AttrOr(e, docx.W("date"), Unknown)
	if date == "" {
		date = Unknown
	}
	return Event{
		Type:   t,
		Author: author,
		Date:   date,
		Text:   Truncate(text),
		Detail: text,
	}
}

// appendMetadataEvents adds the synthetic Creation and LastModification
// events unless a Creation event with the same date is already present.
func appendMetadataEvents(events []Event, meta metadata.Document) []Event {
	hasCreation := func(date string) bool {
		for _, e := range events {
			if e.Type == EventCreation && e.Date == date {
				return true
			}
		}
		return false
	}

	if meta.Created != metadata.Unknown && meta.Created != "" && !hasCreation(meta.Created) {
		detail := "Document created by " + meta.Creator
		events = append(events, Event{
			Type:   EventCreation,
			Author: meta.Creator,
			Date:   meta.Created,
			Text:   Truncate(detail),
			Detail: detail,
		})
	}
	if meta.Modified != metadata.Unknown && meta.Modified != "" && !hasCreation(meta.Modified) {
		detail := "Document last modified by " + meta.LastModifiedBy
		events = append(events, Event{
			Type:   EventLastModification,
			Author: meta.LastModifiedBy,
			Date:   meta.Modified,
			Text:   Truncate(detail),
			Detail: detail,
		})
	}
	return events
}

// CountByType tallies events per type.
func CountByType(events []Event) map[EventType]int {
	counts := make(map[EventType]int)
	for _, e := range events {
		counts[e.Type]++
	}
	return counts
}

// Authors returns the distinct known authors, sorted.
func Authors(events []Event) []string {
	set := make(map[string]struct{})
	for _, e := range events {
		if e.Author != "" && e.Author != Unknown {
			set[e.Author] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
