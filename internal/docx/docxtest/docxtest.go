// Package docxtest builds small word-processing packages in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Namespace declarations carried by generated parts.
const (
	wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:w14="http://schemas.microsoft.com/office/word/2010/wordml"`
	coreNS = `xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
		`xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`
	appNS = `xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"`
)

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Document wraps body content in a w:document part.
func Document(body ...string) string {
	return header + `<w:document ` + wordNS + `><w:body>` + strings.Join(body, "") + `</w:body></w:document>`
}

// Paragraph returns a w:p with the given paragraph RSID and content.
// An empty rsid omits the attribute.
func Paragraph(rsid string, content ...string) string {
	attr := ""
	if rsid != "" {
		attr = fmt.Sprintf(` w:rsidR="%s"`, rsid)
	}
	return `<w:p` + attr + `>` + strings.Join(content, "") + `</w:p>`
}

// StyledParagraph returns a w:p with a paragraph style.
func StyledParagraph(rsid, style string, content ...string) string {
	return Paragraph(rsid, append([]string{`<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`}, content...)...)
}

// Run returns a w:r with optional run RSID and literal text.
func Run(rsid, text string) string {
	attr := ""
	if rsid != "" {
		attr = fmt.Sprintf(` w:rsidR="%s"`, rsid)
	}
	return `<w:r` + attr + `><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`
}

// FormattedRun returns a w:r whose properties carry a font, a half-point
// size and a language. Empty values are omitted.
func FormattedRun(rsid, font, size, lang, text string) string {
	var props strings.Builder
	if font != "" {
		fmt.Fprintf(&props, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, font, font)
	}
	if size != "" {
		fmt.Fprintf(&props, `<w:sz w:val="%s"/>`, size)
	}
	if lang != "" {
		fmt.Fprintf(&props, `<w:lang w:val="%s"/>`, lang)
	}
	attr := ""
	if rsid != "" {
		attr = fmt.Sprintf(` w:rsidR="%s"`, rsid)
	}
	return `<w:r` + attr + `><w:rPr>` + props.String() + `</w:rPr><w:t>` + escape(text) + `</w:t></w:r>`
}

// Core returns a docProps/core.xml part from element/value pairs such as
// "dc:creator", "Ada".
func Core(kv ...string) string {
	var sb strings.Builder
	sb.WriteString(header + `<cp:coreProperties ` + coreNS + `>`)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&sb, "<%s>%s</%s>", kv[i], escape(kv[i+1]), kv[i])
	}
	sb.WriteString(`</cp:coreProperties>`)
	return sb.String()
}

// App returns a docProps/app.xml part from element/value pairs such as
// "Company", "Acme".
func App(kv ...string) string {
	var sb strings.Builder
	sb.WriteString(header + `<Properties ` + appNS + `>`)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&sb, "<%s>%s</%s>", kv[i], escape(kv[i+1]), kv[i])
	}
	sb.WriteString(`</Properties>`)
	return sb.String()
}

// Part wraps content in a root element of the main namespace, for settings,
// styles and comments parts.
func Part(root string, content ...string) string {
	return header + `<w:` + root + ` ` + wordNS + `>` + strings.Join(content, "") + `</w:` + root + `>`
}

// Build zips the given archive paths and contents. Paths are written in
// sorted order so output is deterministic.
func Build(parts map[string]string) []byte {
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Minimal returns a package holding only a body part.
func Minimal(body ...string) []byte {
	return Build(map[string]string{"word/document.xml": Document(body...)})
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
