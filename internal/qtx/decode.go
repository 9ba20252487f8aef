package qtx

import (
	"strings"

	"github.com/wrenfall/antaloor/internal/document"
)

// Decode parses a quest definition file into an editable document: three
// folders (NPCs, Locations, Quests) under the root, one node per block.
func Decode(path string, data []byte) *document.Document {
	lines := splitLines(data)

	npcs := document.NewNode(document.KindFolder, npcFolder)
	locations := document.NewNode(document.KindFolder, locationFolder)
	quests := document.NewNode(document.KindFolder, questFolder)

	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "NPC "):
			var n *document.Node
			n, i = parseNPC(lines, i)
			npcs.Children = append(npcs.Children, n)
		case strings.HasPrefix(line, "LOCATION "):
			var n *document.Node
			n, i = parseLocation(lines, i)
			locations.Children = append(locations.Children, n)
		case strings.HasPrefix(line, "QUEST "):
			var n *document.Node
			n, i = parseQuest(lines, i)
			quests.Children = append(quests.Children, n)
		default:
			i++
		}
	}

	root := document.NewNode(document.KindRoot, path)
	root.Children = []*document.Node{npcs, locations, quests}
	return document.New(document.FormatQTX, path, root, true)
}

func splitLines(data []byte) []string {
	raw := strings.Split(string(data), "\n")
	for i, l := range raw {
		raw[i] = strings.TrimRight(l, "\r")
	}
	return raw
}

// parseNPC consumes an NPC block: the keyword line's twelve positional
// fields, an optional OBJECTS line, and the END terminator. The last
// field (exp) keeps any embedded spaces, so the keyword line splits into
// at most thirteen parts.
func parseNPC(lines []string, i int) (*document.Node, int) {
	parts := strings.SplitN(strings.TrimSpace(lines[i]), " ", len(npcFields)+1)
	n := document.NewNode(document.KindNPC, "")
	for j, f := range npcFields {
		if j+1 < len(parts) {
			setField(n, f, parts[j+1])
		}
	}
	if id, ok := n.Get("id"); ok {
		n.Name = id
	}
	i++
	for i < len(lines) {
		sl := strings.TrimSpace(lines[i])
		if sl == "END" {
			i++
			break
		}
		if rest, ok := strings.CutPrefix(sl, "OBJECTS "); ok {
			objParts := strings.Fields(rest)
			if len(objParts) > 0 {
				n.Set("objects", objParts[0])
			}
			if len(objParts) > 1 {
				n.Set("object_items", strings.Join(objParts[1:], " "))
			}
		}
		i++
	}
	if _, ok := n.Get("objects"); !ok {
		// The writer always emits an OBJECTS line; normalising here
		// keeps decode→encode→decode stable for blocks without one.
		n.Set("objects", "False")
	}
	return n, i
}

// parseLocation consumes a LOCATION block, terminated implicitly by the
// next top-level LOCATION or QUEST keyword. Nested NPC blocks become
// children.
func parseLocation(lines []string, i int) (*document.Node, int) {
	parts := strings.Split(strings.TrimSpace(lines[i]), " ")
	n := document.NewNode(document.KindLocation, "")
	for j, f := range locationFields {
		if j+1 < len(parts) {
			setField(n, f, parts[j+1])
		}
	}
	if id, ok := n.Get("id"); ok {
		n.Name = id
	}
	i++
	for i < len(lines) {
		line := lines[i]
		if strings.HasPrefix(line, "LOCATION ") || strings.HasPrefix(line, "QUEST ") {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(line), "NPC ") {
			var sub *document.Node
			sub, i = parseNPC(lines, i)
			n.Children = append(n.Children, sub)
			continue
		}
		i++
	}
	return n, i
}

// parseQuest consumes a QUEST block up to its END line. Typed sub-lines
// become typed children; lines with unrecognised keywords are preserved
// as raw children.
func parseQuest(lines []string, i int) (*document.Node, int) {
	parts := strings.Split(strings.TrimSpace(lines[i]), " ")
	n := document.NewNode(document.KindQuest, "")
	for j, f := range questFields {
		if j+1 < len(parts) {
			setField(n, f, parts[j+1])
		}
	}
	if id, ok := n.Get("id"); ok {
		n.Name = id
	}
	i++
	for i < len(lines) {
		sl := strings.TrimSpace(lines[i])
		if sl == "END" {
			i++
			break
		}
		if sl != "" {
			n.Children = append(n.Children, parseSub(sl))
		}
		i++
	}
	return n, i
}

// parseSub builds a child node for one quest sub-line. The full trimmed
// line is stored as the raw property and is what the encoder re-emits,
// so edits and unrecognised formatting survive the round trip.
func parseSub(line string) *document.Node {
	kw := keyword(line)
	kind, known := subKinds[kw]
	if !known {
		kind = document.KindRaw
	}
	n := document.NewNode(kind, line)
	n.Set("raw", line)

	params := strings.Split(line, " ")[1:]
	switch kind {
	case document.KindAction:
		if len(params) >= 2 {
			n.Set("action_type", params[0])
			n.Set("trigger", params[1])
			n.Set("params", strings.Join(params[2:], " "))
		}
	case document.KindFC:
		if len(params) >= 1 {
			n.Set("fc_type", params[0])
			n.Set("params", strings.Join(params[1:], " "))
		}
	case document.KindAOQ:
		if len(params) >= 2 {
			n.Set("aoq_action", params[0])
			n.Set("trigger", params[1])
			n.Set("target", strings.Join(params[2:], " "))
		}
	case document.KindReward:
		if len(params) >= 2 {
			n.Set("reward_type", params[0])
			n.Set("trigger", params[1])
			n.Set("amount", strings.Join(params[2:], " "))
		}
	case document.KindGiver:
		for k, idx := range map[string]int{"status": 0, "npc": 1, "behavior": 2, "on_solve": 3} {
			if len(params) > idx {
				n.Set(k, params[idx])
			}
		}
	}
	return n
}
