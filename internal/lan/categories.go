package lan

import (
	"regexp"
	"strings"
)

// Category pairs a literal key prefix with its display label.
type Category struct {
	Prefix string
	Label  string
}

// Categories lists the known key prefixes in display order. First match
// wins; keys matching none fall into "Other".
var Categories = []Category{
	{"DQ_", "Dialogs"},
	{"Q_", "Quests"},
	{"NPCName", "NPC Names"},
	{"NPC_", "NPC Refs"},
	{"RUMORS_", "Rumors"},
	{"TALK_", "Casual Talks"},
	{"EVENT_", "Events"},
	{"CUTSCENE_", "Cutscenes"},
	{"Citizen_", "Citizens"},
	{"Guard_", "Guards"},
	{"QITEM_", "Quest Items"},
	{"ING_", "Ingredients"},
	{"WP_", "Weapons"},
	{"AR_", "Armor"},
	{"Tip_", "Tips"},
	{"Net_", "Network"},
	{"Skill", "Skills"},
}

// OtherLabel is the bucket for keys matching no known prefix.
const OtherLabel = "Other"

// Group is one non-empty category bucket.
type Group struct {
	Label   string
	Entries []Entry
}

// Categorize buckets translations by key prefix, preserving entry order
// within each bucket and omitting empty buckets.
func Categorize(t *Table) []Group {
	byLabel := make(map[string]int, len(Categories)+1)
	groups := make([]Group, 0, len(Categories)+1)
	for _, c := range Categories {
		byLabel[c.Label] = len(groups)
		groups = append(groups, Group{Label: c.Label})
	}
	byLabel[OtherLabel] = len(groups)
	groups = append(groups, Group{Label: OtherLabel})

	for _, e := range t.Entries() {
		label := OtherLabel
		for _, c := range Categories {
			if strings.HasPrefix(e.Key, c.Prefix) {
				label = c.Label
				break
			}
		}
		i := byLabel[label]
		groups[i].Entries = append(groups[i].Entries, e)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Entries) > 0 {
			out = append(out, g)
		}
	}
	return out
}

var dialogKeyRe = regexp.MustCompile(`^DQ_(\d+)`)

// QuestIDForDialogKey maps a dialog translation key ("DQ_12.QS1") to its
// quest key ("Q_12"). Returns "" when the key is not a dialog key.
func QuestIDForDialogKey(key string) string {
	m := dialogKeyRe.FindStringSubmatch(key)
	if m == nil {
		return ""
	}
	return "Q_" + m[1]
}
