package lan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wrenfall/antaloor/internal/document"
)

// Tree builds the browsable Node model for a decoded language file:
// category folders of translation entries, the alias table, and one
// folder per quest dialog graph. The tree is a read-only projection; the
// language container has no write path.
func Tree(path string, f *File) *document.Document {
	root := document.NewNode(document.KindRoot, path)

	for _, g := range Categorize(f.Translations) {
		folder := document.NewNode(document.KindFolder, g.Label)
		for _, e := range g.Entries {
			n := document.NewNode(document.KindText, e.Key)
			n.Set("id", e.Key)
			n.Set("text", e.Value)
			folder.Children = append(folder.Children, n)
		}
		root.Children = append(root.Children, folder)
	}

	if len(f.Aliases) > 0 {
		folder := document.NewNode(document.KindFolder, "Aliases")
		for _, a := range f.Aliases {
			n := document.NewNode(document.KindText, a.Key+" -> "+a.Target)
			n.Set("id", a.Key)
			n.Set("target", a.Target)
			folder.Children = append(folder.Children, n)
		}
		root.Children = append(root.Children, folder)
	}

	if len(f.Quests) > 0 {
		trees := document.NewNode(document.KindFolder, "Dialog Trees")
		for _, q := range f.Quests {
			qn := document.NewNode(document.KindQuest, q.ID)
			qn.Set("id", q.ID)
			for i, d := range q.Dialogs {
				qn.Children = append(qn.Children, dialogNode(f, i, d))
			}
			trees.Children = append(trees.Children, qn)
		}
		root.Children = append(root.Children, trees)
	}

	return document.New(document.FormatLAN, path, root, false)
}

func dialogNode(f *File, idx int, d Dialog) *document.Node {
	name := "[" + d.TransID + "]"
	if text, ok := f.Translations.Get(d.TransID); ok && text != "" {
		name = text
	}
	n := document.NewNode(document.KindDialog, name)
	n.Set("id", d.TransID)
	n.Set("index", strconv.Itoa(idx))
	n.Set("lector", strconv.Itoa(int(d.Lector)))
	if d.SoundCue != "" {
		n.Set("sound_cue", d.SoundCue)
	}
	if len(d.Next) > 0 {
		n.Set("next", joinInt32(d.Next))
	}
	if d.Flags != 0 {
		n.Set("flags", fmt.Sprintf("0x%08x", d.Flags))
	}
	if len(d.CamAngles) > 0 {
		n.Set("cam_angles", joinInt32(d.CamAngles))
	}
	n.Set("anim1", strconv.Itoa(int(d.Anim1)))
	n.Set("anim2", strconv.Itoa(int(d.Anim2)))
	return n
}

func joinInt32(vals []int32) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ",")
}
