package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// XML namespaces used by word-processing packages.
const (
	NSMain          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSWord2010      = "http://schemas.microsoft.com/office/word/2010/wordml"
	NSCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	NSDublinCore    = "http://purl.org/dc/elements/1.1/"
	NSDublinTerms   = "http://purl.org/dc/terms/"
	NSExtendedProps = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
)

// Name is a namespace-qualified element or attribute name.
type Name struct {
	Space string
	Local string
}

// W returns a name in the main wordprocessingml namespace.
func W(local string) Name { return Name{Space: NSMain, Local: local} }

// W14 returns a name in the Word 2010 namespace.
func W14(local string) Name { return Name{Space: NSWord2010, Local: local} }

func (n Name) String() string {
	return "{" + n.Space + "}" + n.Local
}

// Is reports whether e has name n.
func Is(e *etree.Element, n Name) bool {
	return e != nil && e.Tag == n.Local && e.NamespaceURI() == n.Space
}

// Walk visits root and its descendants in document order. Returning false
// from fn skips the children of that element.
func Walk(root *etree.Element, fn func(*etree.Element) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range root.ChildElements() {
		Walk(child, fn)
	}
}

// FindAll returns every descendant of root named n, in document order.
func FindAll(root *etree.Element, n Name) []*etree.Element {
	if root == nil {
		return nil
	}
	var out []*etree.Element
	for _, child := range root.ChildElements() {
		Walk(child, func(e *etree.Element) bool {
			if Is(e, n) {
				out = append(out, e)
			}
			return true
		})
	}
	return out
}

// Find returns the first descendant of root named n, or nil.
func Find(root *etree.Element, n Name) *etree.Element {
	var found *etree.Element
	if root == nil {
		return nil
	}
	for _, child := range root.ChildElements() {
		Walk(child, func(e *etree.Element) bool {
			if found != nil {
				return false
			}
			if Is(e, n) {
				found = e
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// Child returns the first direct child of e named n, or nil.
func Child(e *etree.Element, n Name) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if Is(c, n) {
			return c
		}
	}
	return nil
}

// Children returns the direct children of e named n.
func Children(e *etree.Element, n Name) []*etree.Element {
	if e == nil {
		return nil
	}
	var found []*etree.Element
	for _, c := range e.ChildElements() {
		if Is(c, n) {
			found = append(found, c)
		}
	}
	return found
}

// Attr looks up the attribute of e named n.
func Attr(e *etree.Element, n Name) (string, bool) {
	if e == nil {
		return "", false
	}
	for i := range e.Attr {
		a := &e.Attr[i]
		if a.Key == n.Local && a.NamespaceURI() == n.Space {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute of e named n, or def when it is absent.
func AttrOr(e *etree.Element, n Name, def string) string {
	if v, ok := Attr(e, n); ok {
		return v
	}
	return def
}

// Val returns the w:val attribute of the child of e named n.
func Val(e *etree.Element, n Name) (string, bool) {
	return Attr(Child(e, n), W("val"))
}

// TextOf concatenates the character data of every descendant of e named n.
func TextOf(e *etree.Element, n Name) string {
	var sb strings.Builder
	for _, t := range FindAll(e, n) {
		sb.WriteString(t.Text())
	}
	return sb.String()
}

// Text returns the trimmed character data of the first descendant of root
// named n, and whether it was found.
func Text(root *etree.Element, n Name) (string, bool) {
	e := Find(root, n)
	if e == nil {
		return "", false
	}
	return strings.TrimSpace(e.Text()), true
}

// Ancestor returns the nearest ancestor of e named n, or nil.
func Ancestor(e *etree.Element, n Name) *etree.Element {
	if e == nil {
		return nil
	}
	for p := e.Parent(); p != nil; p = p.Parent() {
		if Is(p, n) {
			return p
		}
	}
	return nil
}

// OwnRuns returns the runs of paragraph p in document order, leaving out runs
// that belong to paragraphs nested inside p (text boxes).
func OwnRuns(p *etree.Element) []*etree.Element {
	if p == nil {
		return nil
	}
	var runs []*etree.Element
	for _, child := range p.ChildElements() {
		Walk(child, func(e *etree.Element) bool {
			if Is(e, W("p")) {
				return false
			}
			if Is(e, W("r")) {
				runs = append(runs, e)
				return false
			}
			return true
		})
	}
	return runs
}

// RunText concatenates the text elements named n inside run r, leaving out
// text of paragraphs nested in the run.
func RunText(r *etree.Element, n Name) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, child := range r.ChildElements() {
		Walk(child, func(e *etree.Element) bool {
			if Is(e, W("p")) {
				return false
			}
			if Is(e, n) {
				sb.WriteString(e.Text())
			}
			return true
		})
	}
	return sb.String()
}

// ParagraphText concatenates the w:t text of the runs owned by p.
func ParagraphText(p *etree.Element) string {
	var sb strings.Builder
	for _, r := range OwnRuns(p) {
		sb.WriteString(RunText(r, W("t")))
	}
	return sb.String()
}
