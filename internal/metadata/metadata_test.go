package metadata

import (
	"testing"

	"github.com/ZanMander/Forensic-linguistics/internal/docx"
	"github.com/ZanMander/Forensic-linguistics/internal/docx/docxtest"
)

func readPackage(t *testing.T, parts map[string]string) *docx.Package {
	t.Helper()
	pkg, err := docx.ReadBytes(docxtest.Build(parts))
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	return pkg
}

func TestParseCoreAndApp(t *testing.T) {
	pkg := readPackage(t, map[string]string{
		"word/document.xml": docxtest.Document(),
		"docProps/core.xml": docxtest.Core(
			"dc:title", "Essay",
			"dc:creator", "Student A",
			"cp:lastModifiedBy", "Student B",
			"cp:revision", "7",
			"dcterms:created", "2024-01-15T10:30:00Z",
			"dcterms:modified", "2024-02-01T00:00:00Z",
		),
		"docProps/app.xml": docxtest.App(
			"Application", "Microsoft Office Word",
			"AppVersion", "16.0000",
			"Company", "Acme",
			"TotalTime", "42",
			"Pages", "3",
			"Words", "812",
		),
	})

	doc := Parse(pkg.Root(docx.PartCore), pkg.Root(docx.PartApp))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Title", doc.Title, "Essay"},
		{"Creator", doc.Creator, "Student A"},
		{"LastModifiedBy", doc.LastModifiedBy, "Student B"},
		{"Revision", doc.Revision, 7},
		{"Created", doc.Created, "2024-01-15T10:30:00Z"},
		{"Modified", doc.Modified, "2024-02-01T00:00:00Z"},
		{"Subject", doc.Subject, Unknown},
		{"Application", doc.Application, "Microsoft Office Word"},
		{"AppVersion", doc.AppVersion, "16.0000"},
		{"Company", doc.Company, "Acme"},
		{"TotalTime", doc.TotalTime, 42},
		{"Pages", doc.Pages, 3},
		{"Words", doc.Words, 812},
		{"Lines", doc.Lines, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestParseMissingAppPart(t *testing.T) {
	pkg := readPackage(t, map[string]string{
		"word/document.xml": docxtest.Document(),
		"docProps/core.xml": docxtest.Core("dc:creator", "Someone"),
	})

	doc := Parse(pkg.Root(docx.PartCore), pkg.Root(docx.PartApp))
	def := NewDocument()

	if doc.Company != def.Company || doc.Application != def.Application ||
		doc.AppVersion != def.AppVersion || doc.Template != def.Template {
		t.Errorf("app string fields should be defaults, got %+v", doc)
	}
	if doc.TotalTime != 0 || doc.Pages != 0 || doc.Words != 0 ||
		doc.Characters != 0 || doc.Lines != 0 || doc.Paragraphs != 0 {
		t.Errorf("app numeric fields should be zero, got %+v", doc)
	}
	if doc.Creator != "Someone" {
		t.Errorf("Creator = %q", doc.Creator)
	}
}

func TestParseNilRoots(t *testing.T) {
	if got := Parse(nil, nil); got != NewDocument() {
		t.Errorf("Parse(nil, nil) = %+v, want defaults", got)
	}
}

func TestParseNonNumeric(t *testing.T) {
	pkg := readPackage(t, map[string]string{
		"word/document.xml": docxtest.Document(),
		"docProps/core.xml": docxtest.Core("cp:revision", "seven"),
		"docProps/app.xml":  docxtest.App("TotalTime", "-5", "Pages", "two"),
	})

	doc := Parse(pkg.Root(docx.PartCore), pkg.Root(docx.PartApp))
	if doc.Revision != 0 || doc.TotalTime != 0 || doc.Pages != 0 {
		t.Errorf("non-numeric values should become 0, got revision=%d total=%d pages=%d",
			doc.Revision, doc.TotalTime, doc.Pages)
	}
}

func TestParseTracking(t *testing.T) {
	pkg := readPackage(t, map[string]string{
		"word/document.xml": docxtest.Document(
			docxtest.Paragraph("00A1", `<w:ins w:author="B" w:date="2024-01-01T00:00:00Z">`+docxtest.Run("", "x")+`</w:ins>`),
		),
		"word/settings.xml": docxtest.Part("settings",
			`<w:trackRevisions/>`,
			`<w:rsids><w:rsidRoot w:val="00A1B2C3"/><w:rsid w:val="00A1B2C3"/><w:rsid w:val="00D4E5F6"/></w:rsids>`,
		),
	})

	tr := ParseTracking(pkg.Root(docx.PartSettings), pkg.Root(docx.PartBody))
	want := Tracking{
		TrackRevisions:    true,
		HasRSIDs:          true,
		RSIDRoot:          "00A1B2C3",
		RSIDCount:         2,
		HasTrackedChanges: true,
	}
	if tr != want {
		t.Errorf("ParseTracking = %+v, want %+v", tr, want)
	}
}

func TestParseTrackingWithoutSettings(t *testing.T) {
	tr := ParseTracking(nil, nil)
	if tr.TrackRevisions || tr.HasRSIDs || tr.RSIDCount != 0 || tr.HasTrackedChanges {
		t.Errorf("expected empty tracking status, got %+v", tr)
	}
	if tr.RSIDRoot != Unknown {
		t.Errorf("RSIDRoot = %q, want %q", tr.RSIDRoot, Unknown)
	}
}
