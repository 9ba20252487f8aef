package shf

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wrenfall/antaloor/internal/document"
)

// Classification patterns. Purely literal matching on string content;
// the dump carries no structural type information the scan can use.
var (
	questIDRe = regexp.MustCompile(`^Q_\d+$`)
	npcRefRe  = regexp.MustCompile(`^NPC_\d+$`)
	groupRe   = regexp.MustCompile(`^[A-Z][A-Z_]{2,30}$`)
)

// dialogTextLimit caps the dialog folder; large saves carry tens of
// thousands of recovered strings and the tree stays responsive.
const dialogTextLimit = 500

// Decode extracts and classifies the strings in an editor save dump,
// returning a read-only document: one folder per category under the
// root, with recovery stats on the root node.
func Decode(path string, data []byte) *document.Document {
	strs := Extract(data)

	questIDs := numericSort(sortedValues(strs, questIDRe.MatchString))
	npcRefs := numericSort(sortedValues(strs, npcRefRe.MatchString))
	groups := sortedValues(strs, func(v string) bool {
		return groupRe.MatchString(v) &&
			!strings.HasPrefix(v, "NPC_") && !strings.HasPrefix(v, "Q_") &&
			!strings.HasPrefix(v, "LOC_") && !strings.HasPrefix(v, "QITEM_")
	})
	items := sortedValues(strs, func(v string) bool { return strings.HasPrefix(v, "QITEM_") })
	enemies := sortedValues(strs, func(v string) bool { return strings.HasPrefix(v, "ENEMY_") })
	locs := sortedValues(strs, func(v string) bool { return strings.HasPrefix(v, "LOC_") })
	dialogs := dialogTexts(strs)

	root := document.NewNode(document.KindRoot, filepath.Base(path))
	root.Set("info", "Read-only (.NET BinaryFormatter)")
	root.Children = []*document.Node{
		idFolder(fmt.Sprintf("Quests (%d)", len(questIDs)), document.KindQuest, questIDs),
		idFolder(fmt.Sprintf("NPC References (%d)", len(npcRefs)), document.KindNPC, npcRefs),
		dialogFolder(dialogs),
		nameFolder(fmt.Sprintf("Groups/Keywords (%d)", len(groups)), groups),
		idFolder(fmt.Sprintf("Quest Items (%d)", len(items)), document.KindItem, items),
		idFolder(fmt.Sprintf("Enemy Types (%d)", len(enemies)), document.KindEnemy, enemies),
		idFolder(fmt.Sprintf("Locations (%d)", len(locs)), document.KindLocation, locs),
	}
	root.Set("strings_total", strconv.Itoa(len(strs)))
	root.Set("quests", strconv.Itoa(len(questIDs)))
	root.Set("npcs", strconv.Itoa(len(npcRefs)))
	root.Set("dialogs", strconv.Itoa(len(dialogs)))

	return document.New(document.FormatSHF, path, root, false)
}

type dialogText struct {
	id   uint32
	text string
}

// dialogTexts selects long punctuated strings, the heuristic for
// recovered dialog lines, ordered by object id. Tool banner strings
// start with "WhizzEdit" and are excluded.
func dialogTexts(strs map[uint32]string) []dialogText {
	var out []dialogText
	for id, v := range strs {
		if len([]rune(v)) > 20 && strings.ContainsAny(v, ".!?,;:") &&
			!strings.HasPrefix(v, "WhizzEdit") {
			out = append(out, dialogText{id: id, text: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func idFolder(name string, kind document.Kind, ids []string) *document.Node {
	f := document.NewNode(document.KindFolder, name)
	for _, id := range ids {
		n := document.NewNode(kind, id)
		n.Set("id", id)
		f.Children = append(f.Children, n)
	}
	return f
}

func nameFolder(name string, names []string) *document.Node {
	f := document.NewNode(document.KindFolder, name)
	for _, g := range names {
		n := document.NewNode(document.KindGroup, g)
		n.Set("name", g)
		f.Children = append(f.Children, n)
	}
	return f
}

func dialogFolder(dialogs []dialogText) *document.Node {
	f := document.NewNode(document.KindFolder, fmt.Sprintf("Dialog Texts (%d)", len(dialogs)))
	for i, d := range dialogs {
		if i == dialogTextLimit {
			break
		}
		n := document.NewNode(document.KindDialog, preview(d.text))
		n.Set("obj_id", strconv.FormatUint(uint64(d.id), 10))
		n.Set("text", d.text)
		f.Children = append(f.Children, n)
	}
	return f
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > 60 {
		runes = runes[:60]
	}
	return strings.NewReplacer("\n", " ", "\r", "").Replace(string(runes))
}

// numericSort orders ids of the form PREFIX_<number> by the numeric
// suffix instead of lexically, so Q_9 sorts before Q_10.
func numericSort(ids []string) []string {
	sort.Slice(ids, func(i, j int) bool {
		return numSuffix(ids[i]) < numSuffix(ids[j])
	})
	return ids
}

func numSuffix(id string) int {
	parts := strings.SplitN(id, "_", 2)
	if len(parts) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(parts[1])
	return n
}
