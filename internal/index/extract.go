package index

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/wrenfall/antaloor/internal/document"
	"github.com/wrenfall/antaloor/internal/idx"
	"github.com/wrenfall/antaloor/internal/lan"
	"github.com/wrenfall/antaloor/internal/qtx"
	"github.com/wrenfall/antaloor/internal/shf"
	"github.com/wrenfall/antaloor/internal/storage"
)

// extract decodes one file and flattens the document into entry rows,
// one per non-structural node, addressed by ordinal ref.
func extract(path string, data []byte, logger *slog.Logger) (document.Format, []EntryRow, error) {
	format, ok := storage.FormatForPath(path)
	if !ok {
		return "", nil, nil
	}

	var doc *document.Document
	switch format {
	case document.FormatLAN:
		f, err := lan.Decode(data, logger)
		if err != nil {
			return format, nil, err
		}
		doc = lan.Tree(path, f)
	case document.FormatIDX:
		f, err := idx.Decode(path, data)
		if err != nil {
			return format, nil, err
		}
		doc = f.Doc
	case document.FormatQTX:
		doc = qtx.Decode(path, data)
	case document.FormatSHF:
		doc = shf.Decode(path, data)
	}
	return format, flatten(doc), nil
}

// flatten walks the tree depth-first, building refs incrementally so
// indexing a large file stays linear.
func flatten(doc *document.Document) []EntryRow {
	var out []EntryRow
	var walk func(n *document.Node, ref string)
	walk = func(n *document.Node, ref string) {
		if n.Kind != document.KindRoot && n.Kind != document.KindFolder {
			out = append(out, EntryRow{
				Ref:   ref,
				Kind:  string(n.Kind),
				Title: n.Name,
				Body:  entryBody(n),
			})
		}
		for i, c := range n.Children {
			childRef := strconv.Itoa(i)
			if ref != "" {
				childRef = ref + "." + childRef
			}
			walk(c, childRef)
		}
	}
	for i, c := range doc.Root.Children {
		walk(c, strconv.Itoa(i))
	}
	return out
}

// entryBody joins the present property values into searchable text.
func entryBody(n *document.Node) string {
	var parts []string
	for _, k := range n.Keys() {
		if v, ok := n.Get(k); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n")
}
