package api

import (
	"strconv"

	"github.com/wrenfall/antaloor/internal/docservice"
	"github.com/wrenfall/antaloor/internal/document"
	"github.com/wrenfall/antaloor/internal/index"
	"github.com/wrenfall/antaloor/internal/lan"
	"github.com/wrenfall/antaloor/internal/qtx"
)

// FileItem is one indexed data file in a list response.
type FileItem struct {
	Path      string `json:"path"`
	Format    string `json:"format"`
	Checksum  string `json:"checksum"`
	Entries   int    `json:"entries"`
	UpdatedAt string `json:"updated_at"`
}

// NodeView is a serialized subtree of a decoded document. Children are
// expanded up to the requested depth; beyond it only ChildCount hints
// that there is more to fetch.
type NodeView struct {
	Ref        string            `json:"ref"`
	Kind       string            `json:"kind"`
	Name       string            `json:"name"`
	Props      map[string]string `json:"props"`
	Absent     []string          `json:"absent,omitempty"`
	Spawn      *SpawnView        `json:"spawn,omitempty"`
	ChildCount int               `json:"child_count"`
	Children   []NodeView        `json:"children,omitempty"`
}

// SpawnView is the broken-down create_string of an NPC node: the actor
// model, its level, and the equipment list.
type SpawnView struct {
	Model string      `json:"model"`
	Level string      `json:"level,omitempty"`
	Equip []EquipView `json:"equip,omitempty"`
}

// EquipView is one equipment entry of a spawn definition.
type EquipView struct {
	Name   string `json:"name"`
	Params string `json:"params"`
}

// DocumentView is the open-document response: metadata plus a subtree.
type DocumentView struct {
	Path     string   `json:"path"`
	Format   string   `json:"format"`
	Editable bool     `json:"editable"`
	Checksum string   `json:"checksum"`
	Node     NodeView `json:"node"`
}

// SetPropertyRequest is the body of a PATCH on a document node.
type SetPropertyRequest struct {
	Ref   string `json:"ref"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TranslationItem is one key/value pair of a language file.
type TranslationItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AliasItem is one alias record of a language file.
type AliasItem struct {
	Key    string `json:"key"`
	Target string `json:"target"`
}

// CategoryGroup is one non-empty prefix bucket of translation keys.
type CategoryGroup struct {
	Label   string            `json:"label"`
	Entries []TranslationItem `json:"entries"`
}

// FindMatch is one in-document search hit.
type FindMatch struct {
	Ref  string `json:"ref"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// CompareView summarizes a translation comparison between two files.
type CompareView struct {
	Missing       int      `json:"missing"`
	Identical     int      `json:"identical"`
	Different     int      `json:"different"`
	MissingKeys   []string `json:"missing_keys"`
	DifferentKeys []string `json:"different_keys"`
}

// SearchResult is a single cross-file search hit (aliased from the index).
type SearchResult = index.SearchResult

// DialogNode is one resolved dialog line (aliased from the domain layer).
type DialogNode = docservice.DialogNode

// LanguageStats is the language-file summary (aliased from the domain layer).
type LanguageStats = docservice.LanguageStats

// nodeView builds a NodeView for n at ref, expanding depth levels of
// children.
func nodeView(n *document.Node, ref string, depth int) NodeView {
	v := NodeView{
		Ref:        ref,
		Kind:       string(n.Kind),
		Name:       n.Name,
		Props:      n.Props(),
		ChildCount: len(n.Children),
	}
	for _, k := range n.Keys() {
		if _, ok := n.Get(k); !ok {
			v.Absent = append(v.Absent, k)
		}
	}
	if n.Kind == document.KindNPC {
		if cs, ok := n.Get("create_string"); ok && cs != "" {
			v.Spawn = spawnView(qtx.ParseCreateString(cs))
		}
	}
	if depth > 0 {
		v.Children = make([]NodeView, len(n.Children))
		for i, c := range n.Children {
			v.Children[i] = nodeView(c, childRef(ref, i), depth-1)
		}
	}
	return v
}

func childRef(parent string, i int) string {
	if parent == "." || parent == "" {
		return strconv.Itoa(i)
	}
	return parent + "." + strconv.Itoa(i)
}

func spawnView(cs qtx.CreateString) *SpawnView {
	v := &SpawnView{Model: cs.Model, Level: cs.Level}
	for _, e := range cs.Equip {
		v.Equip = append(v.Equip, EquipView{Name: e.Name, Params: e.Params})
	}
	return v
}

func translationItems(entries []lan.Entry) []TranslationItem {
	out := make([]TranslationItem, len(entries))
	for i, e := range entries {
		out[i] = TranslationItem{Key: e.Key, Value: e.Value}
	}
	return out
}
