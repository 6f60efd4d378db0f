// Package scenario loads encounter setups from YAML and wires them into a
// ready-to-run combat.Encounter.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/duel/internal/game/combat"
)

// Action kinds accepted in a loadout.
const (
	KindSingle   = "single"
	KindTriple   = "triple"
	KindScripted = "scripted"
)

// ActionDef describes one loadout entry.
type ActionDef struct {
	Kind  string `yaml:"kind"`
	Power int    `yaml:"power"`
	// Name labels a scripted strike in narration.
	Name string `yaml:"name"`
	// Hook is the Lua function computing a scripted strike's damage.
	Hook string `yaml:"hook"`
}

// PlayerDef describes the deciding side.
type PlayerDef struct {
	Name       string      `yaml:"name"`
	Vitality   int         `yaml:"vitality"`
	Mitigation int         `yaml:"mitigation"`
	Loadout    []ActionDef `yaml:"loadout"`
}

// AdversaryDef describes the fixed-behavior side.
type AdversaryDef struct {
	Name       string `yaml:"name"`
	Vitality   int    `yaml:"vitality"`
	Mitigation int    `yaml:"mitigation"`
	// Strike is the constant damage per attack; nil means combat.DefaultAdversaryStrike.
	Strike *int `yaml:"strike"`
}

// Definition is a complete encounter setup.
type Definition struct {
	ID          string       `yaml:"id"`
	Description string       `yaml:"description"`
	Player      PlayerDef    `yaml:"player"`
	Adversary   AdversaryDef `yaml:"adversary"`
}

// Validate checks the definition's invariants.
//
// Postcondition: nil means ID is set, both sides have vitality >= 1 and
// mitigation >= 0, the loadout is non-empty with known kinds, scripted entries
// name a hook, and any explicit strike is >= 0.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return errors.New("scenario: id must not be empty")
	}
	var errs []string
	if d.Player.Vitality < 1 {
		errs = append(errs, fmt.Sprintf("player.vitality must be >= 1, got %d", d.Player.Vitality))
	}
	if d.Player.Mitigation < 0 {
		errs = append(errs, fmt.Sprintf("player.mitigation must be >= 0, got %d", d.Player.Mitigation))
	}
	if len(d.Player.Loadout) == 0 {
		errs = append(errs, "player.loadout must not be empty")
	}
	for i, a := range d.Player.Loadout {
		switch a.Kind {
		case KindSingle, KindTriple:
		case KindScripted:
			if a.Hook == "" {
				errs = append(errs, fmt.Sprintf("player.loadout[%d]: scripted action needs a hook", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("player.loadout[%d]: unknown kind %q", i, a.Kind))
		}
	}
	if d.Adversary.Vitality < 1 {
		errs = append(errs, fmt.Sprintf("adversary.vitality must be >= 1, got %d", d.Adversary.Vitality))
	}
	if d.Adversary.Mitigation < 0 {
		errs = append(errs, fmt.Sprintf("adversary.mitigation must be >= 0, got %d", d.Adversary.Mitigation))
	}
	if d.Adversary.Strike != nil && *d.Adversary.Strike < 0 {
		errs = append(errs, fmt.Sprintf("adversary.strike must be >= 0, got %d", *d.Adversary.Strike))
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// UsesScripts reports whether any loadout entry needs a damage hook.
func (d *Definition) UsesScripts() bool {
	for _, a := range d.Player.Loadout {
		if a.Kind == KindScripted {
			return true
		}
	}
	return false
}

// hookChecker is implemented by hook providers that can report missing hooks up front.
type hookChecker interface {
	Has(hook string) bool
}

// Build turns d into a fully populated encounter narrating to sink.
//
// Precondition: d must have passed Validate; sink and decider must be non-nil.
// Postcondition: Returns an error, and no encounter, if a scripted entry has
// no hook provider or names a hook the provider does not have.
func (d *Definition) Build(sink combat.Sink, decider combat.Decider, hooks combat.DamageHook) (*combat.Encounter, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	loadout := make([]combat.Action, 0, len(d.Player.Loadout))
	for i, a := range d.Player.Loadout {
		switch a.Kind {
		case KindSingle:
			loadout = append(loadout, combat.SingleStrike{Power: a.Power})
		case KindTriple:
			loadout = append(loadout, combat.TripleStrike{Power: a.Power})
		case KindScripted:
			if hooks == nil {
				return nil, fmt.Errorf("scenario %q: loadout[%d] is scripted but scripting is disabled", d.ID, i)
			}
			if hc, ok := hooks.(hookChecker); ok && !hc.Has(a.Hook) {
				return nil, fmt.Errorf("scenario %q: loadout[%d]: hook %q is not defined", d.ID, i, a.Hook)
			}
			loadout = append(loadout, combat.ScriptedStrike{Label: a.Name, Power: a.Power, Hook: a.Hook, Hooks: hooks})
		}
	}

	player, err := combat.NewPlayerSide(combat.Combatant{
		Name:       nameOr(d.Player.Name, "Player"),
		Vitality:   d.Player.Vitality,
		Mitigation: d.Player.Mitigation,
	}, loadout, decider)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", d.ID, err)
	}

	adversary := combat.NewAdversarySide(combat.Combatant{
		Name:       nameOr(d.Adversary.Name, "Enemy"),
		Vitality:   d.Adversary.Vitality,
		Mitigation: d.Adversary.Mitigation,
	})
	if d.Adversary.Strike != nil {
		adversary.Strike = *d.Adversary.Strike
	}

	return combat.NewEncounter(player, adversary, sink), nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// yamlScenarioFile wraps the YAML top-level key.
type yamlScenarioFile struct {
	Scenario *Definition `yaml:"scenario"`
}

// LoadFromBytes parses and validates a single scenario document.
//
// Precondition: data must contain a top-level 'scenario' key.
// Postcondition: Returns a validated *Definition, or an error.
func LoadFromBytes(data []byte) (*Definition, error) {
	var f yamlScenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if f.Scenario == nil {
		return nil, errors.New("scenario YAML missing top-level 'scenario' key")
	}
	if err := f.Scenario.Validate(); err != nil {
		return nil, err
	}
	return f.Scenario, nil
}

// Load reads and validates the scenario file at path.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	d, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return d, nil
}

// LoadDir reads all *.yaml files in dir, sorted by file name.
//
// Postcondition: Returns all definitions or an error on the first failure.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario dir %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]*Definition, 0, len(names))
	for _, name := range names {
		d, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// Resolve returns the built-in scenario named ref, or loads ref as a file path.
func Resolve(ref string) (*Definition, error) {
	if d, ok := Builtin(ref); ok {
		return d, nil
	}
	return Load(ref)
}
