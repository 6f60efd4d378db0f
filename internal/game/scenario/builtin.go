package scenario

import "sort"

// standardPlayer is the player every built-in scenario pits against its adversary.
func standardPlayer() PlayerDef {
	return PlayerDef{
		Name:     "Player",
		Vitality: 100,
		Loadout: []ActionDef{
			{Kind: KindSingle, Power: 87},
			{Kind: KindTriple, Power: 39},
		},
	}
}

var builtins = map[string]func() *Definition{
	"open": func() *Definition {
		return &Definition{
			ID:          "open",
			Description: "An unarmored enemy; the triple strike finishes it in one turn.",
			Player:      standardPlayer(),
			Adversary:   AdversaryDef{Name: "Enemy", Vitality: 100},
		}
	},
	"armored": func() *Definition {
		return &Definition{
			ID:          "armored",
			Description: "A fragile but heavily armored enemy.",
			Player:      standardPlayer(),
			Adversary:   AdversaryDef{Name: "Enemy", Vitality: 45, Mitigation: 25},
		}
	},
	"guarded": func() *Definition {
		return &Definition{
			ID:          "guarded",
			Description: "A sturdy enemy that survives the first shot and strikes back.",
			Player:      standardPlayer(),
			Adversary:   AdversaryDef{Name: "Enemy", Vitality: 100, Mitigation: 19},
		}
	},
}

// Builtin returns a fresh copy of the named built-in scenario.
func Builtin(name string) (*Definition, bool) {
	mk, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return mk(), true
}

// BuiltinNames lists the built-in scenario names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
