package document

import (
	"strconv"
	"strings"
)

// DefaultFindLimit caps Find results when the caller passes limit <= 0.
const DefaultFindLimit = 100

// searchKeys are the properties whose values participate in substring
// search, in addition to the node name.
var searchKeys = []string{
	"id", "iid", "text", "notes", "create_string", "raw",
	"action_type", "fc_type", "npc", "target", "object_items",
}

// Match is one Find hit.
type Match struct {
	Node *Node
	Ref  string
}

// Find walks the tree and returns nodes whose name or primary properties
// contain query, case-insensitively. Queries shorter than two characters
// match nothing. The result count is capped at limit.
func (d *Document) Find(query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultFindLimit
	}

	var out []Match
	var trail []int
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if n != d.Root && matches(n, q) {
			out = append(out, Match{Node: n, Ref: refString(trail)})
			if len(out) >= limit {
				return false
			}
		}
		for i, c := range n.Children {
			trail = append(trail, i)
			more := walk(c)
			trail = trail[:len(trail)-1]
			if !more {
				return false
			}
		}
		return true
	}
	walk(d.Root)
	return out
}

func matches(n *Node, q string) bool {
	if strings.Contains(strings.ToLower(n.Name), q) {
		return true
	}
	for _, key := range searchKeys {
		if v, ok := n.Get(key); ok && strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func refString(trail []int) string {
	if len(trail) == 0 {
		return "."
	}
	parts := make([]string, len(trail))
	for i, t := range trail {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ".")
}
