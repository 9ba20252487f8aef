package document

import (
	"errors"
	"testing"

	"github.com/wrenfall/antaloor/internal/apperr"
)

func buildDoc(editable bool) *Document {
	root := NewNode(KindRoot, "root")
	quests := NewNode(KindFolder, "Quests")
	q := NewNode(KindQuest, "Q_1001")
	q.Set("id", "Q_1001")
	q.Set("group", "ASHOS")
	q.SetAbsent("guild")
	action := NewNode(KindAction, "ACTION TELEPORT OnSolve")
	action.Set("raw", "ACTION TELEPORT OnSolve 12 7")
	q.Children = append(q.Children, action)
	quests.Children = append(quests.Children, q)
	root.Children = append(root.Children, quests)
	return New(FormatQTX, "test.qtx", root, editable)
}

func TestAbsenceIsDistinctFromEmpty(t *testing.T) {
	n := NewNode(KindNPC, "NPC_12")
	n.Set("sector", "")
	n.SetAbsent("marker")

	if v, ok := n.Get("sector"); !ok || v != "" {
		t.Errorf("sector = (%q,%v), want present empty", v, ok)
	}
	if _, ok := n.Get("marker"); ok {
		t.Errorf("marker should be absent")
	}
	// Absent keys still hold their slot in the ordering.
	keys := n.Keys()
	if len(keys) != 2 || keys[0] != "sector" || keys[1] != "marker" {
		t.Errorf("keys = %v", keys)
	}
}

func TestSetPreservesOrder(t *testing.T) {
	n := NewNode(KindQuest, "q")
	n.Set("a", "1")
	n.SetAbsent("b")
	n.Set("c", "3")
	n.Set("b", "2") // fills the absent slot, must not move it
	keys := n.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("keys = %v, want [a b c]", keys)
	}
	if v, ok := n.Get("b"); !ok || v != "2" {
		t.Errorf("b = (%q,%v)", v, ok)
	}
}

func TestSetOnReadOnlyDocument(t *testing.T) {
	d := buildDoc(false)
	n := d.Root.Children[0].Children[0]
	if err := d.Set(n, "group", "CATHALON"); !errors.Is(err, apperr.ErrReadOnly) {
		t.Fatalf("err = %v, want ErrReadOnly", err)
	}
	if v, _ := n.Get("group"); v != "ASHOS" {
		t.Errorf("group mutated to %q on read-only document", v)
	}
}

func TestSetHookFires(t *testing.T) {
	d := buildDoc(true)
	var gotKey, gotVal string
	d.OnSet(func(_ *Node, key, value string) { gotKey, gotVal = key, value })
	n := d.Root.Children[0].Children[0]
	if err := d.Set(n, "group", "CATHALON"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "group" || gotVal != "CATHALON" {
		t.Errorf("hook got (%q,%q)", gotKey, gotVal)
	}
}

func TestRefRoundTrip(t *testing.T) {
	d := buildDoc(true)
	action := d.Root.Children[0].Children[0].Children[0]
	ref := d.Ref(action)
	if ref != "0.0.0" {
		t.Fatalf("ref = %q, want 0.0.0", ref)
	}
	got, err := d.NodeByRef(ref)
	if err != nil || got != action {
		t.Errorf("NodeByRef(%q) = %v, %v", ref, got, err)
	}
	if _, err := d.NodeByRef("0.9"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("out-of-range ref should be ErrNotFound, got %v", err)
	}
}

func TestFindCaseInsensitiveAndCapped(t *testing.T) {
	d := buildDoc(true)
	hits := d.Find("q_1001", 0)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Node.Kind != KindQuest {
		t.Errorf("kind = %q", hits[0].Node.Kind)
	}

	// Raw property participates in search.
	hits = d.Find("teleport", 0)
	if len(hits) != 1 || hits[0].Node.Kind != KindAction {
		t.Errorf("raw search hits = %v", hits)
	}

	// Single-character queries match nothing.
	if got := d.Find("q", 0); got != nil {
		t.Errorf("short query returned %v", got)
	}

	// Cap is honoured.
	if got := d.Find("q_", 1); len(got) > 1 {
		t.Errorf("cap ignored: %d hits", len(got))
	}
}
