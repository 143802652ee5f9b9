// Package metadata reads document-level properties from the core, app and
// settings parts of a word-processing package.
//
// Absent values are represented by sentinels rather than omitted: "Unknown"
// for strings and 0 for numbers. Parsing never fails.
package metadata

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/ZanMander/Forensic-linguistics/internal/docx"
)

// Unknown is the sentinel for absent string properties.
const Unknown = "Unknown"

// Document is the flat record of core and app properties.
type Document struct {
	// Core properties (docProps/core.xml).
	Title          string `json:"title"`
	Subject        string `json:"subject"`
	Creator        string `json:"creator"`
	Keywords       string `json:"keywords"`
	Description    string `json:"description"`
	LastModifiedBy string `json:"last_modified_by"`
	Revision       int    `json:"revision"`
	Created        string `json:"created"`
	Modified       string `json:"modified"`
	LastPrinted    string `json:"last_printed"`
	Category       string `json:"category"`
	ContentStatus  string `json:"content_status"`
	Language       string `json:"language"`

	// Extended properties (docProps/app.xml).
	Application string `json:"application"`
	AppVersion  string `json:"app_version"`
	Company     string `json:"company"`
	Template    string `json:"template"`
	TotalTime   int    `json:"total_edit_minutes"`
	Pages       int    `json:"pages"`
	Words       int    `json:"words"`
	Characters  int    `json:"characters"`
	Lines       int    `json:"lines"`
	Paragraphs  int    `json:"paragraphs"`
}

// Tracking is the change-tracking status recorded in word/settings.xml.
type Tracking struct {
	TrackRevisions    bool   `json:"track_revisions"`
	HasRSIDs          bool   `json:"has_rsids"`
	RSIDRoot          string `json:"rsid_root"`
	RSIDCount         int    `json:"rsid_count"`
	HasTrackedChanges bool   `json:"has_tracked_changes"`
}

type field struct {
	name docx.Name
	set  func(*Document, string)
}

var coreFields = []field{
	{docx.Name{Space: docx.NSDublinCore, Local: "title"}, func(d *Document, v string) { d.Title = v }},
	{docx.Name{Space: docx.NSDublinCore, Local: "subject"}, func(d *Document, v string) { d.Subject = v }},
	{docx.Name{Space: docx.NSDublinCore, Local: "creator"}, func(d *Document, v string) { d.Creator = v }},
	{docx.Name{Space: docx.NSCoreProps, Local: "keywords"}, func(d *Document, v string) { d.Keywords = v }},
	{docx.Name{Space: docx.NSDublinCore, Local: "description"}, func(d *Document, v string) { d.Description = v }},
	{docx.Name{Space: docx.NSCoreProps, Local: "lastModifiedBy"}, func(d *Document, v string) { d.LastModifiedBy = v }},
	{docx.Name{Space: docx.NSCoreProps, Local: "revision"}, func(d *Document, v string) { d.Revision = atoi(v) }},
	{docx.Name{Space: docx.NSDublinTerms, Local: "created"}, func(d *Document, v string) { d.Created = v }},
	{docx.Name{Space: docx.NSDublinTerms, Local: "modified"}, func(d *Document, v string) { d.Modified = v }},
	{docx.Name{Space: docx.NSCoreProps, Local: "lastPrinted"}, func(d *Document, v string) { d.LastPrinted = v }},
	{docx.Name{Space: docx.NSCoreProps, Local: "category"}, func(d *Document, v string) { d.Category = v }},
	{docx.Name{Space: docx.NSCoreProps, Local: "contentStatus"}, func(d *Document, v string) { d.ContentStatus = v }},
	{docx.Name{Space: docx.NSDublinCore, Local: "language"}, func(d *Document, v string) { d.Language = v }},
}

var appFields = []field{
	{ext("Application"), func(d *Document, v string) { d.Application = v }},
	{ext("AppVersion"), func(d *Document, v string) { d.AppVersion = v }},
	{ext("Company"), func(d *Document, v string) { d.Company = v }},
	{ext("Template"), func(d *Document, v string) { d.Template = v }},
	{ext("TotalTime"), func(d *Document, v string) { d.TotalTime = atoi(v) }},
	{ext("Pages"), func(d *Document, v string) { d.Pages = atoi(v) }},
	{ext("Words"), func(d *Document, v string) { d.Words = atoi(v) }},
	{ext("Characters"), func(d *Document, v string) { d.Characters = atoi(v) }},
	{ext("Lines"), func(d *Document, v string) { d.Lines = atoi(v) }},
	{ext("Paragraphs"), func(d *Document, v string) { d.Paragraphs = atoi(v) }},
}

func ext(local string) docx.Name {
	return docx.Name{Space: docx.NSExtendedProps, Local: local}
}

// NewDocument returns a record with every field at its sentinel.
func NewDocument() Document {
	return Document{
		Title:          Unknown,
		Subject:        Unknown,
		Creator:        Unknown,
		Keywords:       Unknown,
		Description:    Unknown,
		LastModifiedBy: Unknown,
		Created:        Unknown,
		Modified:       Unknown,
		LastPrinted:    Unknown,
		Category:       Unknown,
		ContentStatus:  Unknown,
		Language:       Unknown,
		Application:    Unknown,
		AppVersion:     Unknown,
		Company:        Unknown,
		Template:       Unknown,
	}
}

// Parse reads properties from the core and app part roots. Either may be nil.
func Parse(core, app *etree.Element) Document {
	doc := NewDocument()
	apply(&doc, core, coreFields)
	apply(&doc, app, appFields)
	return doc
}

func apply(doc *Document, root *etree.Element, fields []field) {
	if root == nil {
		return
	}
	for _, f := range fields {
		v, ok := docx.Text(root, f.name)
		if !ok || v == "" {
			continue
		}
		f.set(doc, v)
	}
}

// atoi parses a non-negative count, returning 0 for anything else.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseTracking reads the change-tracking switches from the settings part.
// body is consulted only to report whether tracked-change markup is present.
func ParseTracking(settings, body *etree.Element) Tracking {
	t := Tracking{RSIDRoot: Unknown}

	if settings != nil {
		t.TrackRevisions = docx.Find(settings, docx.W("trackRevisions")) != nil
		if rsids := docx.Find(settings, docx.W("rsids")); rsids != nil {
			t.HasRSIDs = true
			if root := docx.Child(rsids, docx.W("rsidRoot")); root != nil {
				t.RSIDRoot = docx.AttrOr(root, docx.W("val"), Unknown)
			}
			t.RSIDCount = len(docx.Children(rsids, docx.W("rsid")))
		}
	}

	if body != nil {
		for _, kind := range []string{"ins", "del", "moveFrom", "moveTo", "rPrChange", "pPrChange"} {
			if docx.Find(body, docx.W(kind)) != nil {
				t.HasTrackedChanges = true
				break
			}
		}
	}

	return t
}
