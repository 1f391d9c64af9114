// Package xmltree is a small document tree over encoding/xml tokens.
// Unlike struct unmarshalling it keeps every element, attribute, comment
// and text node it does not understand, so a document can be re-emitted
// with untouched structure preserved byte-for-byte in content terms.
package xmltree

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is one tree node: *Element, Text, Comment, ProcInst or Directive.
type Node interface {
	write(w *bufio.Writer) error
	clone() Node
}

// Text is character data. Stored unescaped.
type Text string

// Comment is the body of a <!-- --> comment.
type Comment string

// Directive is the body of a <! > directive, e.g. a DOCTYPE.
type Directive string

// ProcInst is a processing instruction such as the XML declaration.
type ProcInst struct {
	Target string
	Inst   string
}

// Element is an XML element. Namespace prefixes are not modeled; FCPXML
// does not use them.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Children []Node
}

// Document is a parsed XML document: the prolog, one root element, and any
// trailing comments.
type Document struct {
	Nodes []Node
}

// Root returns the document's single root element, or nil.
func (d *Document) Root() *Element {
	for _, n := range d.Nodes {
		if e, ok := n.(*Element); ok {
			return e
		}
	}
	return nil
}

// Parse reads a complete XML document.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{}
	var stack []*Element

	appendNode := func(n Node) {
		if len(stack) == 0 {
			doc.Nodes = append(doc.Nodes, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				// Drop namespace declarations the decoder has already
				// consumed; FCPXML carries none in practice.
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, xml.Attr{
					Name:  xml.Name{Local: a.Name.Local},
					Value: a.Value,
				})
			}
			appendNode(el)
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse xml: unexpected end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			appendNode(Text(string(t)))
		case xml.Comment:
			appendNode(Comment(string(t)))
		case xml.ProcInst:
			appendNode(ProcInst{Target: t.Target, Inst: string(t.Inst)})
		case xml.Directive:
			appendNode(Directive(string(t)))
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("parse xml: %d unclosed element(s)", len(stack))
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}
	return doc, nil
}

// WriteTo re-serializes the document.
func (d *Document) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, n := range d.Nodes {
		if err := n.write(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Clone deep-copies the document.
func (d *Document) Clone() *Document {
	out := &Document{Nodes: make([]Node, len(d.Nodes))}
	for i, n := range d.Nodes {
		out.Nodes[i] = n.clone()
	}
	return out
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrDefault returns the named attribute's value or def when absent.
func (e *Element) AttrDefault(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// SetAttr replaces or appends the named attribute.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.Attrs {
		if a.Name.Local == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// ChildElements returns the direct element children.
func (e *Element) ChildElements() []*Element {
	var out []*Element
	for _, n := range e.Children {
		if el, ok := n.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// FindAll returns every descendant element (including e itself) with the
// given name, in document order.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	if e.Name == name {
		out = append(out, e)
	}
	for _, c := range e.ChildElements() {
		out = append(out, c.FindAll(name)...)
	}
	return out
}

// First returns the first descendant with the given name, or nil.
func (e *Element) First(name string) *Element {
	if hits := e.FindAll(name); len(hits) > 0 {
		return hits[0]
	}
	return nil
}

// InnerText concatenates every text node below e, in document order.
func (e *Element) InnerText() string {
	var b strings.Builder
	var walk func(n Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case Text:
			b.WriteString(string(t))
		case *Element:
			for _, c := range t.Children {
				walk(c)
			}
		}
	}
	for _, c := range e.Children {
		walk(c)
	}
	return b.String()
}

func (e *Element) AppendChild(n Node) { e.Children = append(e.Children, n) }

// Serialization.

func (e *Element) write(w *bufio.Writer) error {
	w.WriteByte('<')
	w.WriteString(e.Name)
	for _, a := range e.Attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name.Local)
		w.WriteString(`="`)
		if err := xml.EscapeText(w, []byte(a.Value)); err != nil {
			return err
		}
		w.WriteByte('"')
	}
	if len(e.Children) == 0 {
		_, err := w.WriteString("/>")
		return err
	}
	w.WriteByte('>')
	for _, c := range e.Children {
		if err := c.write(w); err != nil {
			return err
		}
	}
	w.WriteString("</")
	w.WriteString(e.Name)
	err := w.WriteByte('>')
	return err
}

func (t Text) write(w *bufio.Writer) error {
	return xml.EscapeText(w, []byte(t))
}

func (c Comment) write(w *bufio.Writer) error {
	_, err := fmt.Fprintf(w, "<!--%s-->", string(c))
	return err
}

func (d Directive) write(w *bufio.Writer) error {
	_, err := fmt.Fprintf(w, "<!%s>", string(d))
	return err
}

func (p ProcInst) write(w *bufio.Writer) error {
	_, err := fmt.Fprintf(w, "<?%s %s?>", p.Target, p.Inst)
	return err
}

func (e *Element) clone() Node {
	out := &Element{Name: e.Name}
	out.Attrs = append([]xml.Attr(nil), e.Attrs...)
	out.Children = make([]Node, len(e.Children))
	for i, c := range e.Children {
		out.Children[i] = c.clone()
	}
	return out
}

func (t Text) clone() Node      { return t }
func (c Comment) clone() Node   { return c }
func (d Directive) clone() Node { return d }
func (p ProcInst) clone() Node  { return p }

// CloneElement is Clone for a single element subtree.
func CloneElement(e *Element) *Element {
	return e.clone().(*Element)
}
