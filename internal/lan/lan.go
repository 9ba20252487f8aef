// Package lan decodes the game's binary language container: a mandatory
// translation table followed by optional alias and quest-dialog sections.
//
// The optional sections are recovered best-effort. Some shipped files end
// after the translations, and a malformed trailing section is dropped in
// full rather than failing the file; the Sections field reports which of
// the three outcomes (present, absent, dropped) applied.
package lan

// Magic is the fixed 4-byte tag every language file starts with.
const Magic = "LAN\x00"

// keyPrefix is the literal marker the export tool prepends to translation
// and alias keys. It is stripped on decode when present; keys without it
// are kept verbatim.
const keyPrefix = "translate"

// HeroLector is the reserved speaker id of the player protagonist.
const HeroLector = 1

// SectionState reports how an optional section was recovered.
type SectionState int

const (
	// SectionAbsent means the file ends before the section's count word.
	SectionAbsent SectionState = iota
	// SectionPresent means the section decoded cleanly.
	SectionPresent
	// SectionDropped means the section raised a decode fault and was
	// discarded in full. Distinguishing this from SectionAbsent keeps
	// real parser bugs from masquerading as "file has no such section".
	SectionDropped
)

func (s SectionState) String() string {
	switch s {
	case SectionPresent:
		return "present"
	case SectionDropped:
		return "dropped"
	default:
		return "absent"
	}
}

// Entry is one translation: a cleaned key and its display string. The
// value may legitimately be empty.
type Entry struct {
	Key   string
	Value string

	// prefixed records whether the on-disk key carried the export
	// marker, so the section can be re-serialized byte-exact.
	prefixed bool
}

// RawKey returns the key exactly as stored on disk.
func (e Entry) RawKey() string {
	if e.prefixed {
		return keyPrefix + e.Key
	}
	return e.Key
}

// Table is the ordered translation table with keyed lookup.
type Table struct {
	entries []Entry
	byKey   map[string]int
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the entries in file order.
func (t *Table) Entries() []Entry { return t.entries }

// Get returns the display string for key.
func (t *Table) Get(key string) (string, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return "", false
	}
	return t.entries[i].Value, true
}

func (t *Table) add(e Entry) {
	if t.byKey == nil {
		t.byKey = make(map[string]int)
	}
	if i, ok := t.byKey[e.Key]; ok {
		// Duplicate keys are last-writer-wins, matching the consumer.
		t.entries[i] = e
		return
	}
	t.byKey[e.Key] = len(t.entries)
	t.entries = append(t.entries, e)
}

// Alias declares that Key's display string is identical to Target's in a
// different quest state. Chains are never dereferenced, only presented.
type Alias struct {
	Key    string
	Target string
}

// Dialog is one line of a branching quest dialog graph.
type Dialog struct {
	Lector    int32   // speaker id; HeroLector marks the protagonist
	TransID   string  // translation-key reference, may be dangling
	SoundCue  string  // optional audio-cue identifier
	Next      []int32 // successor indices into the same quest's sequence
	Flags     uint32
	CamAngles []int32
	Anim1     uint32
	Anim2     uint32
}

// IsHero reports whether the protagonist speaks this line.
func (d Dialog) IsHero() bool { return d.Lector == HeroLector }

// Quest is an ordered dialog sequence under one quest identifier. The
// Next indices form a directed graph over Dialogs; out-of-range indices
// are tolerated by consumers, not treated as corruption.
type Quest struct {
	ID      string
	Dialogs []Dialog
}

// Sections records the recovery outcome of the optional sections.
type Sections struct {
	Aliases SectionState
	Quests  SectionState
}

// File is the decoded language container.
type File struct {
	Version      uint32
	Translations *Table
	Aliases      []Alias
	Quests       []Quest
	Sections     Sections

	questByID map[string]int
}

// Quest returns the dialog sequence for a quest id.
func (f *File) Quest(id string) (Quest, bool) {
	i, ok := f.questByID[id]
	if !ok {
		return Quest{}, false
	}
	return f.Quests[i], true
}

// DialogCount returns the total number of dialog nodes across quests.
func (f *File) DialogCount() int {
	n := 0
	for _, q := range f.Quests {
		n += len(q.Dialogs)
	}
	return n
}

func stripPrefix(key string) (string, bool) {
	if len(key) >= len(keyPrefix) && key[:len(keyPrefix)] == keyPrefix {
		return key[len(keyPrefix):], true
	}
	return key, false
}
