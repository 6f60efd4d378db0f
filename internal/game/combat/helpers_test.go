package combat_test

import (
	"errors"

	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/narration"
)

// firstDecider always picks the first loadout entry.
type firstDecider struct{}

func (firstDecider) Choose(_ *combat.Encounter, loadout []combat.Action) (combat.Action, error) {
	return loadout[0], nil
}

// failingDecider never picks anything.
type failingDecider struct{}

var errNoIdea = errors.New("no idea")

func (failingDecider) Choose(*combat.Encounter, []combat.Action) (combat.Action, error) {
	return nil, errNoIdea
}

// newDuel builds a named encounter recorded into a Transcript.
// It panics on setup errors so it is usable from rapid property bodies.
func newDuel(playerHP, enemyHP, enemyMit int, decider combat.Decider, loadout ...combat.Action) (*combat.Encounter, *narration.Transcript) {
	player, err := combat.NewPlayerSide(combat.Combatant{Name: "Player", Vitality: playerHP}, loadout, decider)
	if err != nil {
		panic(err)
	}
	enemy := combat.NewAdversarySide(combat.Combatant{Name: "Enemy", Vitality: enemyHP, Mitigation: enemyMit})
	tr := &narration.Transcript{}
	return combat.NewEncounter(player, enemy, tr), tr
}

// fakeHooks returns a fixed damage or error for any hook.
type fakeHooks struct {
	damage int
	err    error
	calls  int
}

func (f *fakeHooks) StrikeDamage(_ string, _, _ int) (int, error) {
	f.calls++
	return f.damage, f.err
}
