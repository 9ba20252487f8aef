package lan

import (
	"fmt"
	"log/slog"

	"github.com/wrenfall/antaloor/internal/binread"
)

// Decode parses a language file buffer. It fails only when the magic tag
// is wrong or the mandatory translation section cannot be read; faults in
// the optional alias/quest sections downgrade to dropped sections and are
// logged through logger (nil for silent).
func Decode(data []byte, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("lan: missing LAN\\0 magic tag")
	}

	r := binread.New(data)
	r.Seek(len(Magic))

	version, err := r.Uint32()
	if err != nil {
		return nil, fmt.Errorf("lan: read version: %w", err)
	}

	f := &File{
		Version:      version,
		Translations: &Table{},
		questByID:    make(map[string]int),
	}

	if err := decodeTranslations(r, f.Translations); err != nil {
		return nil, fmt.Errorf("lan: read translations: %w", err)
	}

	// Everything past here is best-effort. A section shorter than its
	// count word is absent; a decode fault drops the section in full.
	if r.Remaining() <= 4 {
		return f, nil
	}
	aliasStart := r.Offset()
	aliases, err := decodeAliases(r)
	if err != nil {
		logger.Warn("lan: alias section dropped",
			slog.Int("offset", aliasStart),
			slog.String("error", err.Error()))
		f.Sections.Aliases = SectionDropped
		// The quest section offset is only known relative to a clean
		// alias section, so it is unrecoverable here.
		f.Sections.Quests = SectionDropped
		return f, nil
	}
	f.Aliases = aliases
	f.Sections.Aliases = SectionPresent

	if r.Remaining() <= 4 {
		return f, nil
	}
	questStart := r.Offset()
	quests, err := decodeQuests(r)
	if err != nil {
		logger.Warn("lan: quest section dropped",
			slog.Int("offset", questStart),
			slog.String("error", err.Error()))
		f.Sections.Quests = SectionDropped
		return f, nil
	}
	f.Quests = quests
	f.Sections.Quests = SectionPresent
	for i, q := range f.Quests {
		f.questByID[q.ID] = i
	}
	return f, nil
}

func decodeTranslations(r *binread.Reader, t *Table) error {
	count, err := r.Uint32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		rawKey, err := r.String()
		if err != nil {
			return fmt.Errorf("entry %d key: %w", i, err)
		}
		val, err := r.UTF16String()
		if err != nil {
			return fmt.Errorf("entry %d value: %w", i, err)
		}
		key, prefixed := stripPrefix(rawKey)
		t.add(Entry{Key: key, Value: val, prefixed: prefixed})
	}
	return nil
}

// prealloc caps a count-driven allocation at what the unread buffer
// could possibly hold: a garbage count word must fail on its first
// short read, not abort the process allocating for entries that cannot
// exist.
func prealloc(r *binread.Reader, count uint32, minEntrySize int) int {
	if max := r.Remaining() / minEntrySize; uint64(count) > uint64(max) {
		return max
	}
	return int(count)
}

func decodeAliases(r *binread.Reader) ([]Alias, error) {
	count, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	// An alias is at least two empty length-prefixed strings.
	out := make([]Alias, 0, prealloc(r, count, 8))
	for i := uint32(0); i < count; i++ {
		key, err := r.String()
		if err != nil {
			return nil, fmt.Errorf("alias %d key: %w", i, err)
		}
		target, err := r.String()
		if err != nil {
			return nil, fmt.Errorf("alias %d target: %w", i, err)
		}
		ck, _ := stripPrefix(key)
		ct, _ := stripPrefix(target)
		out = append(out, Alias{Key: ck, Target: ct})
	}
	return out, nil
}

func decodeQuests(r *binread.Reader) ([]Quest, error) {
	count, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	// A quest is at least an empty id, a dialog count, and padding.
	out := make([]Quest, 0, prealloc(r, count, 12))
	for i := uint32(0); i < count; i++ {
		rawID, err := r.String()
		if err != nil {
			return nil, fmt.Errorf("quest %d id: %w", i, err)
		}
		id, _ := stripPrefix(rawID)

		dialogCount, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("quest %s dialog count: %w", id, err)
		}
		if _, err := r.Uint32(); err != nil { // padding
			return nil, fmt.Errorf("quest %s padding: %w", id, err)
		}

		// An empty dialog still carries ten fixed 4-byte fields.
		dialogs := make([]Dialog, 0, prealloc(r, dialogCount, 40))
		for j := uint32(0); j < dialogCount; j++ {
			d, err := decodeDialog(r)
			if err != nil {
				return nil, fmt.Errorf("quest %s dialog %d: %w", id, j, err)
			}
			dialogs = append(dialogs, d)
		}
		out = append(out, Quest{ID: id, Dialogs: dialogs})
	}
	return out, nil
}

func decodeDialog(r *binread.Reader) (Dialog, error) {
	var d Dialog
	var err error

	if d.Lector, err = r.Int32(); err != nil {
		return d, err
	}
	rawTrans, err := r.String()
	if err != nil {
		return d, err
	}
	d.TransID, _ = stripPrefix(rawTrans)
	if d.SoundCue, err = r.String(); err != nil {
		return d, err
	}
	if d.Next, err = r.Int32Array(); err != nil {
		return d, err
	}
	if d.Flags, err = r.Uint32(); err != nil {
		return d, err
	}
	if d.CamAngles, err = r.Int32Array(); err != nil {
		return d, err
	}
	if d.Anim1, err = r.Uint32(); err != nil {
		return d, err
	}
	if d.Anim2, err = r.Uint32(); err != nil {
		return d, err
	}
	return d, nil
}
