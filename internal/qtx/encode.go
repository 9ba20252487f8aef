package qtx

import (
	"strings"

	"github.com/wrenfall/antaloor/internal/document"
)

// Encode re-serializes a decoded quest document using the literal block
// grammar: positional fields from node properties with Null for absent
// ones, quest sub-lines emitted verbatim from their stored raw text, and
// a trailing newline.
func Encode(doc *document.Document) []byte {
	var out []string
	for _, folder := range doc.Root.Children {
		for _, n := range folder.Children {
			switch n.Kind {
			case document.KindNPC:
				out = writeNPC(out, n)
			case document.KindLocation:
				out = writeLocation(out, n)
			case document.KindQuest:
				out = writeQuest(out, n)
			}
		}
	}
	return []byte(strings.Join(out, "\n") + "\n")
}

func writeNPC(out []string, n *document.Node) []string {
	parts := make([]string, 0, len(npcFields)+1)
	parts = append(parts, "NPC")
	for _, f := range npcFields {
		parts = append(parts, fieldOrNull(n, f))
	}
	out = append(out, strings.Join(parts, " "))

	objects, ok := n.Get("objects")
	if !ok {
		objects = "False"
	}
	objLine := "  OBJECTS " + objects
	if items, ok := n.Get("object_items"); ok && items != "" {
		objLine += " " + items
	}
	out = append(out, objLine, "END")
	return out
}

func writeLocation(out []string, n *document.Node) []string {
	parts := make([]string, 0, len(locationFields)+1)
	parts = append(parts, "LOCATION")
	for _, f := range locationFields {
		parts = append(parts, fieldOrNull(n, f))
	}
	out = append(out, strings.Join(parts, " "))
	for _, c := range n.Children {
		if c.Kind == document.KindNPC {
			out = writeNPC(out, c)
		}
	}
	return out
}

func writeQuest(out []string, n *document.Node) []string {
	parts := make([]string, 0, len(questFields)+1)
	parts = append(parts, "QUEST")
	for _, f := range questFields {
		parts = append(parts, fieldOrNull(n, f))
	}
	out = append(out, strings.Join(parts, " "))
	for _, c := range n.Children {
		raw, _ := c.Get("raw")
		out = append(out, "  "+raw)
	}
	out = append(out, "END")
	return out
}
