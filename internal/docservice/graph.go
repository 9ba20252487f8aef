package docservice

import (
	"fmt"

	"github.com/wrenfall/antaloor/internal/apperr"
)

// LanguageStats mirrors the viewer status line for one language file.
type LanguageStats struct {
	Version     uint32 `json:"version"`
	Texts       int    `json:"texts"`
	Aliases     int    `json:"aliases"`
	Quests      int    `json:"quests"`
	DialogNodes int    `json:"dialog_nodes"`
}

// LanguageStats summarizes the language file at path.
func (s *Service) LanguageStats(path string) (LanguageStats, error) {
	f, err := s.Language(path)
	if err != nil {
		return LanguageStats{}, err
	}
	return LanguageStats{
		Version:     f.Version,
		Texts:       f.Translations.Len(),
		Aliases:     len(f.Aliases),
		Quests:      len(f.Quests),
		DialogNodes: f.DialogCount(),
	}, nil
}

// DialogNode is one resolved line of a quest dialog graph: the dialog
// record joined with its translated text, successors filtered to
// indices that actually exist.
type DialogNode struct {
	Index    int    `json:"index"`
	Lector   int32  `json:"lector"`
	Hero     bool   `json:"hero"`
	TransID  string `json:"trans_id"`
	Text     string `json:"text,omitempty"`
	SoundCue string `json:"sound_cue,omitempty"`
	Next     []int  `json:"next"`
}

// DialogGraph resolves one quest's dialog sequence from the language
// file at path. A successor index outside the sequence is dropped, not
// an error; shipped files reference nodes that were cut.
func (s *Service) DialogGraph(path, questID string) ([]DialogNode, error) {
	f, err := s.Language(path)
	if err != nil {
		return nil, err
	}
	q, ok := f.Quest(questID)
	if !ok {
		return nil, fmt.Errorf("docservice: quest %s: %w", questID, apperr.ErrNotFound)
	}

	out := make([]DialogNode, len(q.Dialogs))
	for i, d := range q.Dialogs {
		n := DialogNode{
			Index:    i,
			Lector:   d.Lector,
			Hero:     d.IsHero(),
			TransID:  d.TransID,
			SoundCue: d.SoundCue,
			Next:     []int{},
		}
		if text, ok := f.Translations.Get(d.TransID); ok {
			n.Text = text
		}
		for _, succ := range d.Next {
			if succ >= 0 && int(succ) < len(q.Dialogs) {
				n.Next = append(n.Next, int(succ))
			}
		}
		out[i] = n
	}
	return out, nil
}
