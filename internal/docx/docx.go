// Package docx opens Office Open XML word-processing packages and decodes the
// internal XML parts the forensic analysis reads.
//
// Only an archive that cannot be opened is an error. A part that is absent or
// malformed is recorded on the Package and yields a nil root.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/unicode"
)

// ErrDocumentFormat is returned when the input is not a readable zip package.
var ErrDocumentFormat = errors.New("docx: not a readable document package")

// MaxPartSize bounds the decompressed size of a single XML part.
const MaxPartSize = 64 << 20

// Logical part names.
const (
	PartBody        = "document"
	PartCore        = "core"
	PartApp         = "app"
	PartSettings    = "settings"
	PartStyles      = "styles"
	PartFontTable   = "fontTable"
	PartTheme       = "theme"
	PartNumbering   = "numbering"
	PartWebSettings = "webSettings"
	PartComments    = "comments"
)

// CustomPrefix is the archive prefix of custom XML data parts.
const CustomPrefix = "customXml/"

// KnownParts maps logical part names to their paths inside the archive.
var KnownParts = map[string]string{
	PartBody:        "word/document.xml",
	PartCore:        "docProps/core.xml",
	PartApp:         "docProps/app.xml",
	PartSettings:    "word/settings.xml",
	PartStyles:      "word/styles.xml",
	PartFontTable:   "word/fontTable.xml",
	PartTheme:       "word/theme/theme1.xml",
	PartNumbering:   "word/numbering.xml",
	PartWebSettings: "word/webSettings.xml",
	PartComments:    "word/comments.xml",
}

// partOrder fixes the iteration order of KnownParts.
var partOrder = []string{
	PartBody, PartCore, PartApp, PartSettings, PartStyles,
	PartFontTable, PartTheme, PartNumbering, PartWebSettings, PartComments,
}

// Package holds the decoded parts of one document.
type Package struct {
	// Parts maps a logical name (or a customXml path) to its root element.
	// Absent and malformed parts map to nil.
	Parts map[string]*etree.Element

	// Missing lists parts not found in the archive, in fixed part order.
	Missing []string

	// Malformed lists parts that were present but could not be decoded.
	Malformed []string

	// Custom lists the customXml part paths found, sorted.
	Custom []string
}

// Root returns the root element of the named part, or nil.
func (p *Package) Root(name string) *etree.Element {
	if p == nil {
		return nil
	}
	return p.Parts[name]
}

// Has reports whether the named part was present and parsed.
func (p *Package) Has(name string) bool {
	return p.Root(name) != nil
}

// Present returns the names of parsed parts: known parts first in fixed
// order, then custom parts.
func (p *Package) Present() []string {
	if p == nil {
		return nil
	}
	var names []string
	for _, name := range partOrder {
		if p.Parts[name] != nil {
			names = append(names, name)
		}
	}
	for _, name := range p.Custom {
		if p.Parts[name] != nil {
			names = append(names, name)
		}
	}
	return names
}

// Open reads the package at path.
func Open(path string) (*Package, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentFormat, path, err)
	}
	defer zr.Close()
	return decode(&zr.Reader), nil
}

// Read reads a package from r.
func Read(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentFormat, err)
	}
	return decode(zr), nil
}

// ReadBytes reads a package held in memory.
func ReadBytes(data []byte) (*Package, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

func decode(zr *zip.Reader) *Package {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	pkg := &Package{Parts: make(map[string]*etree.Element)}

	for _, name := range partOrder {
		f, ok := files[KnownParts[name]]
		if !ok {
			pkg.Parts[name] = nil
			pkg.Missing = append(pkg.Missing, name)
			continue
		}
		root, err := parsePart(f)
		if err != nil {
			pkg.Malformed = append(pkg.Malformed, name)
		}
		pkg.Parts[name] = root
	}

	for path, f := range files {
		if !strings.HasPrefix(path, CustomPrefix) || !strings.HasSuffix(path, ".xml") {
			continue
		}
		pkg.Custom = append(pkg.Custom, path)
		root, err := parsePart(f)
		if err != nil {
			pkg.Malformed = append(pkg.Malformed, path)
		}
		pkg.Parts[path] = root
	}
	sort.Strings(pkg.Custom)
	sort.SliceStable(pkg.Malformed, func(i, j int) bool {
		return partRank(pkg.Malformed[i]) < partRank(pkg.Malformed[j])
	})

	return pkg
}

// partRank orders known parts before custom parts.
func partRank(name string) int {
	for i, n := range partOrder {
		if n == name {
			return i
		}
	}
	return len(partOrder)
}

// parsePart decompresses f as UTF-8, dropping any byte-order mark, and
// parses it into a tree.
func parsePart(f *zip.File) (*etree.Element, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if len(raw) > MaxPartSize {
		return nil, fmt.Errorf("read %s: part exceeds %d bytes", f.Name, MaxPartSize)
	}

	text, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Name, err)
	}

	doc := etree.NewDocument()
	// The bytes are already UTF-8; ignore any declared encoding.
	doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := doc.ReadFromBytes(text); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Name, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse %s: no root element", f.Name)
	}
	return root, nil
}
