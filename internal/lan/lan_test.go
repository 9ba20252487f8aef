package lan

import (
	"bytes"
	"testing"
)

// buildFile assembles a LAN buffer from pre-encoded sections.
func buildFile(t *testing.T, version uint32, sections ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(Magic)
	putUint32(&buf, version)
	for _, s := range sections {
		buf.Write(s)
	}
	return buf.Bytes()
}

func translationSection(t *testing.T, entries ...Entry) []byte {
	t.Helper()
	tab := &Table{}
	for _, e := range entries {
		tab.add(e)
	}
	b, err := EncodeTranslations(tab)
	if err != nil {
		t.Fatalf("encode translations: %v", err)
	}
	return b
}

func aliasSection(aliases ...Alias) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(aliases)))
	for _, a := range aliases {
		putString(&buf, a.Key)
		putString(&buf, a.Target)
	}
	return buf.Bytes()
}

func questSection(t *testing.T, quests ...Quest) []byte {
	t.Helper()
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(quests)))
	for _, q := range quests {
		putString(&buf, q.ID)
		putUint32(&buf, uint32(len(q.Dialogs)))
		putUint32(&buf, 0) // padding
		for _, d := range q.Dialogs {
			putUint32(&buf, uint32(d.Lector))
			putString(&buf, d.TransID)
			putString(&buf, d.SoundCue)
			putUint32(&buf, uint32(len(d.Next)))
			putUint32(&buf, 0)
			for _, n := range d.Next {
				putUint32(&buf, uint32(n))
			}
			putUint32(&buf, d.Flags)
			putUint32(&buf, uint32(len(d.CamAngles)))
			putUint32(&buf, 0)
			for _, c := range d.CamAngles {
				putUint32(&buf, uint32(c))
			}
			putUint32(&buf, d.Anim1)
			putUint32(&buf, d.Anim2)
		}
	}
	return buf.Bytes()
}

func TestDecodeEndToEnd(t *testing.T) {
	data := buildFile(t, 1,
		translationSection(t, Entry{Key: "Q_1", Value: "Take the letter"}),
		aliasSection(),
		questSection(t, Quest{ID: "DQ_1", Dialogs: []Dialog{
			{Lector: 1, TransID: "DQ_1.1"},
		}}),
	)

	f, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Version != 1 {
		t.Errorf("version = %d, want 1", f.Version)
	}
	if v, ok := f.Translations.Get("Q_1"); !ok || v != "Take the letter" {
		t.Errorf("translation = (%q,%v)", v, ok)
	}
	if len(f.Aliases) != 0 {
		t.Errorf("aliases = %v, want empty", f.Aliases)
	}
	q, ok := f.Quest("DQ_1")
	if !ok || len(q.Dialogs) != 1 {
		t.Fatalf("quest DQ_1 = %+v, ok=%v", q, ok)
	}
	d := q.Dialogs[0]
	if d.Lector != 1 || !d.IsHero() || d.TransID != "DQ_1.1" || len(d.Next) != 0 {
		t.Errorf("dialog = %+v", d)
	}
	if f.Sections.Quests != SectionPresent {
		t.Errorf("quest section state = %v", f.Sections.Quests)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	if _, err := Decode([]byte("NOTLAN\x00\x00"), nil); err == nil {
		t.Fatal("expected error for wrong magic")
	}
}

func TestDecodeTruncatedTranslationsIsFatal(t *testing.T) {
	data := buildFile(t, 1, translationSection(t, Entry{Key: "Q_1", Value: "x"}))
	if _, err := Decode(data[:len(data)-2], nil); err == nil {
		t.Fatal("expected error for truncated mandatory section")
	}
}

func TestDecodeTruncatedAliasSectionDropped(t *testing.T) {
	full := aliasSection(
		Alias{Key: "DQ_2.A", Target: "DQ_1.A"},
		Alias{Key: "DQ_2.B", Target: "DQ_1.B"},
	)
	data := buildFile(t, 1,
		translationSection(t, Entry{Key: "Q_1", Value: "Take the letter"}),
		full[:len(full)-3], // cut mid-entry
	)

	f, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode should recover, got %v", err)
	}
	if f.Translations.Len() != 1 {
		t.Errorf("translations lost: %d", f.Translations.Len())
	}
	if len(f.Aliases) != 0 {
		t.Errorf("aliases = %v, want dropped", f.Aliases)
	}
	if f.Sections.Aliases != SectionDropped {
		t.Errorf("alias state = %v, want dropped", f.Sections.Aliases)
	}
}

// A corrupt count word must fail on its first short read, not
// preallocate for billions of entries that cannot exist.
func TestDecodeGarbageCountWordDropsSection(t *testing.T) {
	garbage := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x02, 0x03, 0x04}
	translations := translationSection(t, Entry{Key: "Q_1", Value: "Take the letter"})

	t.Run("alias count", func(t *testing.T) {
		f, err := Decode(buildFile(t, 1, translations, garbage), nil)
		if err != nil {
			t.Fatalf("Decode should recover, got %v", err)
		}
		if f.Translations.Len() != 1 {
			t.Errorf("translations lost: %d", f.Translations.Len())
		}
		if f.Sections.Aliases != SectionDropped || f.Sections.Quests != SectionDropped {
			t.Errorf("sections = %+v, want both dropped", f.Sections)
		}
	})

	t.Run("quest count", func(t *testing.T) {
		f, err := Decode(buildFile(t, 1, translations, aliasSection(), garbage), nil)
		if err != nil {
			t.Fatalf("Decode should recover, got %v", err)
		}
		if f.Sections.Aliases != SectionPresent {
			t.Errorf("alias state = %v, want present", f.Sections.Aliases)
		}
		if f.Sections.Quests != SectionDropped || len(f.Quests) != 0 {
			t.Errorf("quests = %v (%v), want dropped", f.Quests, f.Sections.Quests)
		}
	})

	t.Run("dialog count", func(t *testing.T) {
		var quests bytes.Buffer
		putUint32(&quests, 1)
		putString(&quests, "DQ_9")
		putUint32(&quests, 0xFFFFFFFF) // dialog count
		putUint32(&quests, 0)          // padding
		f, err := Decode(buildFile(t, 1, translations, aliasSection(), quests.Bytes()), nil)
		if err != nil {
			t.Fatalf("Decode should recover, got %v", err)
		}
		if f.Sections.Quests != SectionDropped {
			t.Errorf("quest state = %v, want dropped", f.Sections.Quests)
		}
	})
}

func TestDecodeMissingOptionalSectionsAbsent(t *testing.T) {
	data := buildFile(t, 1, translationSection(t, Entry{Key: "Q_1", Value: "x"}))
	f, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Sections.Aliases != SectionAbsent || f.Sections.Quests != SectionAbsent {
		t.Errorf("sections = %+v, want absent", f.Sections)
	}
}

func TestPrefixStripping(t *testing.T) {
	data := buildFile(t, 1,
		translationSection(t,
			Entry{Key: "Q_1", Value: "a", prefixed: true},
			Entry{Key: "CustomKey", Value: "b"},
		),
		aliasSection(
			Alias{Key: keyPrefix + "DQ_2.A", Target: "DQ_1.A"},
		),
	)
	f, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, ok := f.Translations.Get("Q_1"); !ok {
		t.Errorf("prefixed key not stripped")
	}
	if _, ok := f.Translations.Get("CustomKey"); !ok {
		t.Errorf("unprefixed key not preserved verbatim")
	}
	if f.Aliases[0].Key != "DQ_2.A" || f.Aliases[0].Target != "DQ_1.A" {
		t.Errorf("alias = %+v", f.Aliases[0])
	}
}

func TestTranslationsRoundTripBytes(t *testing.T) {
	section := translationSection(t,
		Entry{Key: "Q_1", Value: "Take the letter", prefixed: true},
		Entry{Key: "DQ_1.1", Value: "", prefixed: true},
		Entry{Key: "Verbatim", Value: "plain"},
	)
	data := buildFile(t, 3, section)

	f, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, err := EncodeTranslations(f.Translations)
	if err != nil {
		t.Fatalf("EncodeTranslations: %v", err)
	}
	if !bytes.Equal(got, section) {
		t.Errorf("re-encoded section differs from original\n got %x\nwant %x", got, section)
	}
}

func TestCategorize(t *testing.T) {
	tab := &Table{}
	tab.add(Entry{Key: "DQ_1.1", Value: "dialog"})
	tab.add(Entry{Key: "Q_1", Value: "quest"})
	tab.add(Entry{Key: "WeirdKey", Value: "other"})

	groups := Categorize(tab)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[0].Label != "Dialogs" || groups[1].Label != "Quests" || groups[2].Label != OtherLabel {
		t.Errorf("labels = %v %v %v", groups[0].Label, groups[1].Label, groups[2].Label)
	}
}

func TestQuestIDForDialogKey(t *testing.T) {
	if got := QuestIDForDialogKey("DQ_42.QS1"); got != "Q_42" {
		t.Errorf("got %q, want Q_42", got)
	}
	if got := QuestIDForDialogKey("TALK_3"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestCompare(t *testing.T) {
	base := &Table{}
	base.add(Entry{Key: "Q_1", Value: "Take the letter"})
	base.add(Entry{Key: "Q_2", Value: "Find the hermit"})
	base.add(Entry{Key: "Q_3", Value: "Return home"})
	other := &Table{}
	other.add(Entry{Key: "Q_1", Value: "Take the letter"})
	other.add(Entry{Key: "Q_2", Value: "Seek the hermit"})

	c := Compare(base, other)
	if c.Identical != 1 || c.Different != 1 || c.Missing != 1 {
		t.Errorf("comparison = %+v", c)
	}
	if len(c.DifferentKeys) != 1 || c.DifferentKeys[0] != "Q_2" {
		t.Errorf("different keys = %v", c.DifferentKeys)
	}
	if len(c.MissingKeys) != 1 || c.MissingKeys[0] != "Q_3" {
		t.Errorf("missing keys = %v", c.MissingKeys)
	}
	if got := CompareKey(base, other, "Q_2"); got != KeyDifferent {
		t.Errorf("CompareKey = %v", got)
	}
}

func TestTreeProjection(t *testing.T) {
	data := buildFile(t, 1,
		translationSection(t, Entry{Key: "Q_1", Value: "Take the letter", prefixed: true}),
		aliasSection(Alias{Key: "DQ_2.A", Target: "DQ_1.A"}),
		questSection(t, Quest{ID: "DQ_1", Dialogs: []Dialog{
			{Lector: 7, TransID: "DQ_1.1", Next: []int32{99}},
		}}),
	)
	f, err := Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	doc := Tree("quests.lan", f)
	if doc.Editable {
		t.Error("language documents must be read-only")
	}
	// Quests category, Aliases, Dialog Trees.
	if len(doc.Root.Children) != 3 {
		t.Fatalf("root children = %d, want 3", len(doc.Root.Children))
	}
	hits := doc.Find("dq_1.1", 0)
	if len(hits) == 0 {
		t.Error("dialog node not findable")
	}
}
