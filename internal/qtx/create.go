package qtx

import (
	"regexp"
	"strings"
)

// CreateString is the broken-down form of an NPC create_string field:
// "Model(level)#Item(params)#..." describing the spawned actor and its
// equipment.
type CreateString struct {
	Model string      `json:"model"`
	Level string      `json:"level,omitempty"`
	Equip []EquipItem `json:"equip,omitempty"`
}

// EquipItem is one equipment entry with its raw parameter list.
type EquipItem struct {
	Name   string `json:"name"`
	Params string `json:"params"`
}

var (
	modelRe = regexp.MustCompile(`^(\w+)\((\d+)\)`)
	equipRe = regexp.MustCompile(`(\w+)\(([^)]+)\)`)
)

// ParseCreateString splits a create_string into model, level, and
// equipment. A value that does not follow the Model(level) shape keeps
// the whole model part verbatim with no level.
func ParseCreateString(cs string) CreateString {
	model, equip, _ := strings.Cut(cs, "#")
	out := CreateString{Model: model}
	if m := modelRe.FindStringSubmatch(model); m != nil {
		out.Model = m[1]
		out.Level = m[2]
	}
	if equip != "" {
		for _, m := range equipRe.FindAllStringSubmatch(equip, -1) {
			out.Equip = append(out.Equip, EquipItem{Name: m[1], Params: m[2]})
		}
	}
	return out
}
