package idx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is one node of the backing XML tree. The whole tree is kept in
// memory for the lifetime of a session: edits patch element text in place
// and Encode re-serializes the tree, so the document structure written
// back is exactly the structure read in.
type Element struct {
	Space    string // namespace URI, empty for unqualified names
	Local    string
	Attrs    []xml.Attr
	Text     string
	Children []*Element
}

// Attr returns the value of the unqualified attribute local, or "".
func (e *Element) Attr(local string) string {
	for _, a := range e.Attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Child returns the first direct child with the given local name.
func (e *Element) Child(local string) *Element {
	for _, c := range e.Children {
		if c.Local == local {
			return c
		}
	}
	return nil
}

// parseXML builds an Element tree from a whole XML document. A leading
// UTF-8 byte order mark is tolerated.
func parseXML(data []byte) (*Element, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("idx: parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Space: t.Name.Space,
				Local: t.Name.Local,
				Attrs: append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("idx: parse xml: multiple roots")
				}
				root = el
			} else {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("idx: parse xml: unbalanced end tag")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			// Leading text only; tails after child elements are
			// formatting noise in this serialization.
			if len(stack) > 0 && len(stack[len(stack)-1].Children) == 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("idx: parse xml: empty document")
	}
	return root, nil
}

// serialize writes the tree back as XML, restoring namespace prefixes
// from the xmlns declarations carried on the elements themselves.
func serialize(root *Element) []byte {
	var buf bytes.Buffer
	prefixes := map[string]string{}
	writeElement(&buf, root, prefixes)
	return buf.Bytes()
}

func writeElement(buf *bytes.Buffer, e *Element, prefixes map[string]string) {
	// Declarations on this element extend the prefix scope for the
	// subtree; the map is copied so sibling scopes stay independent.
	scoped := prefixes
	for _, a := range e.Attrs {
		if a.Name.Space == "xmlns" {
			if scoped[a.Value] == "" {
				if len(scoped) == len(prefixes) {
					scoped = copyPrefixes(prefixes)
				}
				scoped[a.Value] = a.Name.Local
			}
		}
	}

	name := qualify(e.Space, e.Local, scoped)
	buf.WriteByte('<')
	buf.WriteString(name)
	for _, a := range e.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(attrName(a.Name, scoped))
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if e.Text == "" && len(e.Children) == 0 {
		buf.WriteString(" />")
		return
	}
	buf.WriteByte('>')
	xml.EscapeText(buf, []byte(e.Text))
	for _, c := range e.Children {
		writeElement(buf, c, scoped)
	}
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}

func qualify(space, local string, prefixes map[string]string) string {
	if space == "" {
		return local
	}
	if p, ok := prefixes[space]; ok && p != "" {
		return p + ":" + local
	}
	return local
}

func attrName(n xml.Name, prefixes map[string]string) string {
	if n.Space == "xmlns" {
		return "xmlns:" + n.Local
	}
	return qualify(n.Space, n.Local, prefixes)
}

func copyPrefixes(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// trimText returns the element's text content with surrounding
// whitespace removed, the form stored as a node property.
func trimText(e *Element) string {
	return strings.TrimSpace(e.Text)
}
