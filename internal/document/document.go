// Package document defines the generic tree model shared by every format
// decoder: typed Nodes with ordered properties and children, grouped into
// a Document that owns them for the lifetime of one loaded file.
//
// Property values distinguish absence from the empty string. A field that
// a source file marks with an explicit null stays absent in the model and
// is re-emitted as the format's null marker on save, never as "".
package document

import (
	"strconv"
	"strings"

	"github.com/wrenfall/antaloor/internal/apperr"
)

// Format identifies the container a Document was decoded from.
type Format string

const (
	FormatLAN Format = "lan"
	FormatIDX Format = "idx"
	FormatQTX Format = "qtx"
	FormatSHF Format = "shf"
)

// Kind is the node type tag. The set is closed per format but open at the
// category level; decoders may only use the constants below.
type Kind string

const (
	KindRoot       Kind = "root"
	KindFolder     Kind = "folder"
	KindQuest      Kind = "quest"
	KindNPC        Kind = "npc"
	KindLocation   Kind = "location"
	KindDialog     Kind = "dialog"
	KindDialogText Kind = "dialog-text"
	KindAction     Kind = "action"
	KindFC         Kind = "fc"
	KindAOQ        Kind = "aoq"
	KindReward     Kind = "reward"
	KindGiver      Kind = "giver"
	KindItem       Kind = "item"
	KindEnemy      Kind = "enemy"
	KindGroup      Kind = "group"
	KindText       Kind = "text"
	// KindRaw preserves lines or records the decoder recognised but did
	// not interpret, so no content is silently dropped.
	KindRaw Kind = "raw"
)

type prop struct {
	key     string
	val     string
	present bool
}

// Node is one element of a decoded document tree.
type Node struct {
	Kind     Kind
	Name     string
	Children []*Node

	// Origin is an opaque handle to the record this node was decoded
	// from, sufficient for a write-back encoder to patch that record in
	// place. Nil for formats without a write path.
	Origin any

	props []prop
}

// NewNode returns a Node of the given kind and display name.
func NewNode(kind Kind, name string) *Node {
	return &Node{Kind: kind, Name: name}
}

// Get returns the value of key and whether it is present. An absent
// property yields ("", false) even when the key itself is recorded.
func (n *Node) Get(key string) (string, bool) {
	for i := range n.props {
		if n.props[i].key == key {
			return n.props[i].val, n.props[i].present
		}
	}
	return "", false
}

// Set stores a present value for key, preserving first-set ordering.
func (n *Node) Set(key, value string) {
	for i := range n.props {
		if n.props[i].key == key {
			n.props[i].val = value
			n.props[i].present = true
			return
		}
	}
	n.props = append(n.props, prop{key: key, val: value, present: true})
}

// SetAbsent records key with no value. The key keeps its slot in the
// property order so encoders can emit the format's null marker for it.
func (n *Node) SetAbsent(key string) {
	for i := range n.props {
		if n.props[i].key == key {
			n.props[i].val = ""
			n.props[i].present = false
			return
		}
	}
	n.props = append(n.props, prop{key: key})
}

// Keys returns the property keys in insertion order, absent ones included.
func (n *Node) Keys() []string {
	out := make([]string, len(n.props))
	for i := range n.props {
		out[i] = n.props[i].key
	}
	return out
}

// Props returns present properties as a key→value map. Used by read-only
// consumers; editors must go through Get/Set to keep ordering intact.
func (n *Node) Props() map[string]string {
	out := make(map[string]string, len(n.props))
	for i := range n.props {
		if n.props[i].present {
			out[n.props[i].key] = n.props[i].val
		}
	}
	return out
}

// Walk visits n and every descendant in depth-first order. Returning
// false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Document owns the Node tree decoded from one file. It is created
// atomically by a successful decode and replaced wholesale on reload;
// nodes are never shared between documents.
type Document struct {
	Format   Format
	Path     string
	Root     *Node
	Editable bool

	// setHook, when non-nil, is invoked after every successful Set so a
	// decoder can mirror the edit into its origin records (the IDX
	// encoder patches element text this way).
	setHook func(n *Node, key, value string)
}

// New returns a Document wrapping root.
func New(format Format, path string, root *Node, editable bool) *Document {
	return &Document{Format: format, Path: path, Root: root, Editable: editable}
}

// OnSet registers a hook mirroring edits into the origin records.
func (d *Document) OnSet(hook func(n *Node, key, value string)) {
	d.setHook = hook
}

// Get reads a node property through the document surface.
func (d *Document) Get(n *Node, key string) (string, bool) {
	return n.Get(key)
}

// Set updates a node property. It fails for read-only documents (SHF
// reconstructions) without touching the node.
func (d *Document) Set(n *Node, key, value string) error {
	if !d.Editable {
		return apperr.ErrReadOnly
	}
	n.Set(key, value)
	if d.setHook != nil {
		d.setHook(n, key, value)
	}
	return nil
}

// Children returns the ordered child list of n.
func (d *Document) Children(n *Node) []*Node {
	return n.Children
}

// Ref returns the ordinal path of n within the document ("2.0.5"), or
// "" when n is not part of the tree. The root's ref is ".".
func (d *Document) Ref(n *Node) string {
	if n == d.Root {
		return "."
	}
	var path []int
	var walk func(cur *Node, trail []int) bool
	walk = func(cur *Node, trail []int) bool {
		for i, c := range cur.Children {
			next := append(trail, i)
			if c == n {
				path = append([]int(nil), next...)
				return true
			}
			if walk(c, next) {
				return true
			}
		}
		return false
	}
	if !walk(d.Root, nil) {
		return ""
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

// NodeByRef resolves an ordinal path produced by Ref.
func (d *Document) NodeByRef(ref string) (*Node, error) {
	if ref == "." || ref == "" {
		return d.Root, nil
	}
	cur := d.Root
	for _, part := range strings.Split(ref, ".") {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 || i >= len(cur.Children) {
			return nil, apperr.ErrNotFound
		}
		cur = cur.Children[i]
	}
	return cur, nil
}
