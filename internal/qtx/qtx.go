// Package qtx decodes and re-encodes the plaintext quest definition
// format: NPC, LOCATION, and QUEST blocks made of space-separated
// positional fields, with "(null)" as the literal absence marker.
//
// Decoding is tolerant — no line shape is fatal, unmatched lines are
// skipped — and encoding reproduces the exact block grammar, so decode →
// encode → decode is idempotent for any file the decoder fully
// understood.
package qtx

import (
	"strings"

	"github.com/wrenfall/antaloor/internal/document"
)

// Null is the literal marker for an absent field.
const Null = "(null)"

// Positional field names per block kind, in on-disk order.
var (
	npcFields      = []string{"id", "iid", "marker", "sector", "angle", "quest_ref", "level", "party_ref", "size", "active", "create_string", "exp"}
	locationFields = []string{"id", "iid", "marker", "sector", "x", "y"}
	questFields    = []string{"id", "group", "iid", "guild", "min_rep", "add_to_log"}
)

// subKinds maps QUEST sub-line keywords to node kinds. Lines starting
// with any other keyword are preserved as raw children so no quest
// content is silently dropped.
var subKinds = map[string]document.Kind{
	"ACTION": document.KindAction,
	"FC":     document.KindFC,
	"AOQ":    document.KindAOQ,
	"REWARD": document.KindReward,
	"GIVER":  document.KindGiver,
}

// Folder names under the document root, in order.
const (
	npcFolder      = "NPCs"
	locationFolder = "Locations"
	questFolder    = "Quests"
)

func setField(n *document.Node, key, value string) {
	if value == Null {
		n.SetAbsent(key)
		return
	}
	n.Set(key, value)
}

// fieldOrNull returns the encoded form of a positional field: its value
// when present, the literal null marker otherwise. Absence is never
// flattened to an empty string.
func fieldOrNull(n *document.Node, key string) string {
	if v, ok := n.Get(key); ok {
		return v
	}
	return Null
}

func keyword(line string) string {
	trimmed := strings.TrimSpace(line)
	if i := strings.IndexByte(trimmed, ' '); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
