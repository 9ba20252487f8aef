// Package idx decodes and writes back the legacy remote-object XML
// serialization of quest data: a SOAP body holding flat id-tagged
// elements, stitched into a tree by resolving href="#id" references
// from a distinguished RootNode element.
//
// The backing XML tree is retained for the whole session. Property
// edits are mirrored into the referenced elements' text, and Encode
// re-serializes the unmodified structure, so a written file differs
// from the original only in the patched text content.
package idx

import (
	"fmt"
	"strings"

	"github.com/wrenfall/antaloor/internal/document"
)

const nsXSI = "http://www.w3.org/2001/XMLSchema-instance"

// utf8BOM signs the written file; the game's loader expects it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// kinds maps serialized element tags to document node kinds. Unknown
// tags map to raw so nothing in the reference graph is dropped.
var kinds = map[string]document.Kind{
	"RootNode":             document.KindRoot,
	"NodeSharedFolder":     document.KindFolder,
	"NodeFolder":           document.KindFolder,
	"NodeQuest":            document.KindQuest,
	"NodeQuestDialog":      document.KindDialog,
	"NodeDialog":           document.KindDialog,
	"NodeRumorsDialog":     document.KindDialog,
	"NodeQuestDialogText":  document.KindDialogText,
	"NodeDialogText":       document.KindDialogText,
	"NodeRumorsDialogText": document.KindDialogText,
	"NodeCharacter":        document.KindNPC,
	"NodeEnemy":            document.KindEnemy,
	"NodeLocation":         document.KindLocation,
	"NodeObject":           document.KindItem,
	"NodeGroup":            document.KindGroup,
	"NodeParty":            document.KindGroup,
	"NodeGuild":            document.KindGroup,
	"NodeText":             document.KindText,
	"NodeQuestText":        document.KindText,
	"NodeQuestAction":      document.KindAction,
	"NodeQuestReward":      document.KindReward,
	"NodeQuestFC":          document.KindFC,
	"NodeQuestAOQ":         document.KindAOQ,
	"NodeQuestGiver":       document.KindGiver,
}

func kindFor(tag string) document.Kind {
	if k, ok := kinds[tag]; ok {
		return k
	}
	return document.KindRaw
}

// File couples a decoded quest document with the XML tree it came from.
type File struct {
	Doc  *document.Document
	root *Element
}

// Decode parses an IDX buffer into an editable document. It fails only
// when the SOAP body or the RootNode reference element is missing; a
// dangling or cyclic href just drops the one reference.
func Decode(path string, data []byte) (*File, error) {
	root, err := parseXML(data)
	if err != nil {
		return nil, err
	}

	body := root.Child("Body")
	if body == nil {
		return nil, fmt.Errorf("idx: %s: missing SOAP body", path)
	}

	refs := make(map[string]*Element, len(body.Children))
	for _, e := range body.Children {
		if id := e.Attr("id"); id != "" {
			refs[id] = e
		}
	}

	rootEl := body.Child("RootNode")
	if rootEl == nil {
		return nil, fmt.Errorf("idx: %s: missing RootNode element", path)
	}

	b := &builder{refs: refs, active: map[*Element]bool{}}
	doc := document.New(document.FormatIDX, path, b.node(rootEl), true)
	doc.OnSet(mirrorEdit)
	return &File{Doc: doc, root: root}, nil
}

// Encode serializes the backing XML tree with a UTF-8 byte order mark
// and no XML declaration, matching the layout the game reads.
func (f *File) Encode() []byte {
	return append(append([]byte(nil), utf8BOM...), serialize(f.root)...)
}

type builder struct {
	refs   map[string]*Element
	active map[*Element]bool
}

func (b *builder) resolve(href string) *Element {
	if strings.HasPrefix(href, "#") {
		return b.refs[href[1:]]
	}
	return nil
}

// node converts one referenced element: direct children become
// properties (explicit xsi:null recorded as absence), a "nodes" child
// pulls in the referenced Array as ordered children.
func (b *builder) node(el *Element) *document.Node {
	b.active[el] = true
	defer delete(b.active, el)

	n := document.NewNode(kindFor(el.Local), "")
	n.Origin = el
	var name string
	for _, c := range el.Children {
		switch {
		case isNull(c):
			n.SetAbsent(c.Local)
		case c.Local == "n" || c.Local == "name":
			name = trimText(c)
			n.Set("name", name)
		case c.Local == "nodes":
			if arr := b.resolve(c.Attr("href")); arr != nil && arr.Local == "Array" {
				n.Children = b.array(arr)
			}
		default:
			n.Set(c.Local, trimText(c))
		}
	}

	if name == "" {
		name = firstPresent(n, "iid", "text")
	}
	if name == "" {
		name = el.Local
	}
	n.Name = name
	return n
}

// array resolves an Array element's item hrefs in order. Dangling
// references and back-references to an element still being built are
// skipped; resolution always terminates.
func (b *builder) array(arr *Element) []*document.Node {
	var out []*document.Node
	for _, item := range arr.Children {
		ce := b.resolve(item.Attr("href"))
		if ce == nil || ce.Local == "Array" || b.active[ce] {
			continue
		}
		out = append(out, b.node(ce))
	}
	return out
}

func isNull(e *Element) bool {
	for _, a := range e.Attrs {
		if a.Name.Space == nsXSI && a.Name.Local == "null" && a.Value == "1" {
			return true
		}
	}
	return false
}

func firstPresent(n *document.Node, keys ...string) string {
	for _, k := range keys {
		if v, ok := n.Get(k); ok && v != "" {
			return v
		}
	}
	return ""
}

// mirrorEdit patches the origin element so the next Encode writes the
// new value. The display name lives in an "n" child on disk but some
// node types spell it "name"; whichever exists gets the edit.
func mirrorEdit(n *document.Node, key, value string) {
	el, ok := n.Origin.(*Element)
	if !ok {
		return
	}
	tags := []string{key}
	if key == "name" {
		tags = []string{"n", "name"}
	}
	for _, tag := range tags {
		if c := el.Child(tag); c != nil {
			c.Text = value
			return
		}
	}
}
