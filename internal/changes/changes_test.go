package changes

import (
	"strings"
	"testing"
	"time"

	"github.com/ZanMander/Forensic-linguistics/internal/docx"
	"github.com/ZanMander/Forensic-linguistics/internal/docx/docxtest"
	"github.com/ZanMander/Forensic-linguistics/internal/metadata"
)

// =============================================================================
// Date parsing
// =============================================================================

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00.5Z", time.Date(2024, 1, 15, 10, 30, 0, 500000000, time.UTC)},
		{"2024-01-15T12:30:00+02:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"  2024-01-15  ", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"not-a-date", Sentinel},
		{"", Sentinel},
		{Unknown, Sentinel},
		{"15/01/2024", Sentinel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDate(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSentinelSortsFirst(t *testing.T) {
	early := ParseDate("2024-01-15T10:30:00Z")
	late := ParseDate("2024-02-01T00:00:00Z")
	bad := ParseDate("not-a-date")

	if !early.Before(late) {
		t.Error("2024-01-15 should sort before 2024-02-01")
	}
	if !bad.Before(early) {
		t.Error("sentinel should sort before real dates")
	}
	if bad.Year() != 1900 || bad.Month() != time.January || bad.Day() != 1 {
		t.Errorf("sentinel = %v, want 1900-01-01", bad)
	}
}

// =============================================================================
// Truncation
// =============================================================================

func TestTruncate(t *testing.T) {
	exact := strings.Repeat("a", MaxDisplayText)
	long := strings.Repeat("b", MaxDisplayText+1)

	if got := Truncate(exact); got != exact {
		t.Errorf("text of exactly %d chars should be unchanged", MaxDisplayText)
	}
	got := Truncate(long)
	if got != strings.Repeat("b", MaxDisplayText)+Ellipsis {
		t.Errorf("Truncate(long) = %q", got)
	}

	// Multi-byte runes are counted as characters.
	accented := strings.Repeat("é", MaxDisplayText+5)
	if got := Truncate(accented); got != strings.Repeat("é", MaxDisplayText)+Ellipsis {
		t.Errorf("Truncate(accented) = %q", got)
	}
}

// =============================================================================
// Scanning
// =============================================================================

func scanPackage(t *testing.T, parts map[string]string) []Event {
	t.Helper()
	pkg, err := docx.ReadBytes(docxtest.Build(parts))
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	meta := metadata.Parse(pkg.Root(docx.PartCore), pkg.Root(docx.PartApp))
	return Scan(pkg.Root(docx.PartBody), pkg.Root(docx.PartComments), meta)
}

func TestScanTrackedChanges(t *testing.T) {
	body := docxtest.Document(
		docxtest.Paragraph("00A1",
			`<w:ins w:id="1" w:author="Alice" w:date="2024-03-01T09:00:00Z">`+docxtest.Run("", "added words")+`</w:ins>`,
			`<w:del w:id="2" w:author="Bob" w:date="2024-02-01T09:00:00Z"><w:r><w:delText>removed</w:delText></w:r></w:del>`,
		),
		docxtest.Paragraph("00A1",
			`<w:moveFrom w:id="3" w:author="Carol" w:date="2024-01-01T09:00:00Z"><w:r><w:delText>moved</w:delText></w:r></w:moveFrom>`,
			`<w:r><w:rPr><w:b/><w:rPrChange w:id="4" w:author="Dan" w:date="2024-04-01T09:00:00Z"><w:rPr/></w:rPrChange></w:rPr><w:t>bolded</w:t></w:r>`,
		),
		`<w:p><w:pPr><w:jc w:val="center"/><w:pPrChange w:id="5" w:date="2024-05-01T09:00:00Z"><w:pPr/></w:pPrChange></w:pPr>`+
			docxtest.Run("", "centred")+`</w:p>`,
	)

	events := scanPackage(t, map[string]string{"word/document.xml": body})

	want := []struct {
		typ    EventType
		author string
		text   string
	}{
		{EventMove, "Carol", "moved"},
		{EventDeletion, "Bob", "removed"},
		{EventInsertion, "Alice", "added words"},
		{EventFormatChange, "Dan", "bolded"},
		{EventParagraphFormatChange, Unknown, "centred"},
	}

	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, w := range want {
		e := events[i]
		if e.Type != w.typ || e.Author != w.author || e.Text != w.text {
			t.Errorf("events[%d] = {%s %s %q}, want {%s %s %q}",
				i, e.Type, e.Author, e.Text, w.typ, w.author, w.text)
		}
	}
}

func TestScanMissingAttributes(t *testing.T) {
	body := docxtest.Document(docxtest.Paragraph("00A1", `<w:ins>`+docxtest.Run("", "x")+`</w:ins>`))
	events := scanPackage(t, map[string]string{"word/document.xml": body})

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Author != Unknown || events[0].Date != Unknown {
		t.Errorf("author/date = %q/%q, want Unknown", events[0].Author, events[0].Date)
	}
	if !events[0].Timestamp.Equal(Sentinel) {
		t.Errorf("Timestamp = %v, want sentinel", events[0].Timestamp)
	}
}

func TestScanUnparseableDateSortsFirst(t *testing.T) {
	body := docxtest.Document(docxtest.Paragraph("00A1",
		`<w:ins w:author="A" w:date="2024-02-01T00:00:00Z">`+docxtest.Run("", "late")+`</w:ins>`,
		`<w:ins w:author="B" w:date="2024-01-15T10:30:00Z">`+docxtest.Run("", "early")+`</w:ins>`,
		`<w:ins w:author="C" w:date="not-a-date">`+docxtest.Run("", "bad")+`</w:ins>`,
	))
	events := scanPackage(t, map[string]string{"word/document.xml": body})

	got := []string{events[0].Text, events[1].Text, events[2].Text}
	want := []string{"bad", "early", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestScanStableForEqualTimestamps(t *testing.T) {
	body := docxtest.Document(docxtest.Paragraph("00A1",
		`<w:ins w:author="A" w:date="2024-01-01T00:00:00Z">`+docxtest.Run("", "first")+`</w:ins>`,
		`<w:ins w:author="A" w:date="2024-01-01T00:00:00Z">`+docxtest.Run("", "second")+`</w:ins>`,
		`<w:ins w:author="A" w:date="2024-01-01T00:00:00Z">`+docxtest.Run("", "third")+`</w:ins>`,
	))
	events := scanPackage(t, map[string]string{"word/document.xml": body})

	for i, want := range []string{"first", "second", "third"} {
		if events[i].Text != want {
			t.Errorf("events[%d].Text = %q, want %q", i, events[i].Text, want)
		}
	}
}

func TestScanComments(t *testing.T) {
	events := scanPackage(t, map[string]string{
		"word/document.xml": docxtest.Document(),
		"word/comments.xml": docxtest.Part("comments",
			`<w:comment w:id="0" w:author="Reviewer" w:date="2024-06-01T12:00:00Z">`+
				docxtest.Paragraph("", docxtest.Run("", "Please cite this."))+
				`</w:comment>`),
	})

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type != EventComment || events[0].Author != "Reviewer" || events[0].Detail != "Please cite this." {
		t.Errorf("comment event = %+v", events[0])
	}
}

func TestScanMetadataEvents(t *testing.T) {
	events := scanPackage(t, map[string]string{
		"word/document.xml": docxtest.Document(),
		"docProps/core.xml": docxtest.Core(
			"dc:creator", "Author",
			"cp:lastModifiedBy", "Editor",
			"dcterms:created", "2024-01-01T00:00:00Z",
			"dcterms:modified", "2024-01-10T00:00:00Z",
		),
	})

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventCreation || events[0].Author != "Author" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Type != EventLastModification || events[1].Author != "Editor" {
		t.Errorf("events[1] = %+v", events[1])
	}
}

func TestScanSuppressesModificationAtCreationDate(t *testing.T) {
	events := scanPackage(t, map[string]string{
		"word/document.xml": docxtest.Document(),
		"docProps/core.xml": docxtest.Core(
			"dcterms:created", "2024-01-01T00:00:00Z",
			"dcterms:modified", "2024-01-01T00:00:00Z",
		),
	})

	if len(events) != 1 || events[0].Type != EventCreation {
		t.Errorf("events = %+v, want a single Creation event", events)
	}
}

func TestScanNilRoots(t *testing.T) {
	events := Scan(nil, nil, metadata.NewDocument())
	if events == nil || len(events) != 0 {
		t.Errorf("Scan(nil, nil, defaults) = %v, want empty slice", events)
	}
}

func TestCountByTypeAndAuthors(t *testing.T) {
	events := []Event{
		{Type: EventInsertion, Author: "B"},
		{Type: EventInsertion, Author: "A"},
		{Type: EventDeletion, Author: Unknown},
	}

	counts := CountByType(events)
	if counts[EventInsertion] != 2 || counts[EventDeletion] != 1 {
		t.Errorf("CountByType = %v", counts)
	}
	authors := Authors(events)
	if len(authors) != 2 || authors[0] != "A" || authors[1] != "B" {
		t.Errorf("Authors = %v", authors)
	}
}
