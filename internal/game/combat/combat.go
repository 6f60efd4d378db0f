// Package combat implements the two-sided turn-based encounter: combatants,
// their actions, the shared encounter context and the turn engine that drives
// an encounter to a win or a loss.
package combat

import (
	"errors"
	"fmt"
)

// DefaultAdversaryStrike is the constant damage of the adversary's attack.
const DefaultAdversaryStrike = 119

var (
	// ErrEmptyLoadout is returned when a player side has no actions to choose from.
	ErrEmptyLoadout = errors.New("combat: player loadout is empty")
	// ErrInvalidEncounter is returned when an encounter is missing a participant or sink.
	ErrInvalidEncounter = errors.New("combat: invalid encounter")
)

// Combatant is the data shared by both sides: vitality and mitigation.
//
// Invariant: Vitality has no floor; it may go negative before the terminal check.
type Combatant struct {
	Name       string
	Vitality   int
	Mitigation int
}

// Down reports whether the combatant has been reduced to zero vitality or below.
func (c *Combatant) Down() bool { return c.Vitality <= 0 }

// Decider picks the player's action for the current turn.
type Decider interface {
	// Choose returns the action to run against enc's adversary.
	//
	// Postcondition: enc is observably unchanged and nothing is written to enc.Sink.
	Choose(enc *Encounter, loadout []Action) (Action, error)
}

// PlayerSide is the decision-making combatant with a fixed action loadout.
//
// Invariant: loadout is non-empty and never changes after construction.
type PlayerSide struct {
	Combatant
	loadout []Action
	decider Decider
}

// NewPlayerSide builds a PlayerSide owning a private copy of loadout.
//
// Precondition: decider must be non-nil.
// Postcondition: Returns ErrEmptyLoadout if loadout has no actions.
func NewPlayerSide(c Combatant, loadout []Action, decider Decider) (*PlayerSide, error) {
	if decider == nil {
		panic("combat.NewPlayerSide: decider must not be nil")
	}
	if len(loadout) == 0 {
		return nil, ErrEmptyLoadout
	}
	for i, a := range loadout {
		if a == nil {
			return nil, fmt.Errorf("combat: loadout slot %d is nil", i)
		}
	}
	cp := make([]Action, len(loadout))
	copy(cp, loadout)
	return &PlayerSide{Combatant: c, loadout: cp, decider: decider}, nil
}

// Loadout returns a copy of the player's actions in loadout order.
func (p *PlayerSide) Loadout() []Action {
	cp := make([]Action, len(p.loadout))
	copy(cp, p.loadout)
	return cp
}

// Act asks the decider for an action and runs it against the live adversary.
//
// Postcondition: on error nothing has been mutated or narrated.
func (p *PlayerSide) Act(enc *Encounter) error {
	action, err := p.decider.Choose(enc, p.Loadout())
	if err != nil {
		return fmt.Errorf("choosing action: %w", err)
	}
	if action == nil {
		return fmt.Errorf("choosing action: decider returned no action")
	}
	action.Run(enc, &enc.Adversary.Combatant)
	return nil
}

// AdversarySide is the non-deciding combatant. Its only behavior is a fixed strike.
type AdversarySide struct {
	Combatant
	// Strike is the constant damage dealt to the player each turn; player
	// mitigation does not reduce it.
	Strike int
}

// NewAdversarySide returns an adversary hitting for DefaultAdversaryStrike.
func NewAdversarySide(c Combatant) *AdversarySide {
	return &AdversarySide{Combatant: c, Strike: DefaultAdversaryStrike}
}

// Act performs the fixed strike against enc's player.
func (a *AdversarySide) Act(enc *Encounter) {
	enc.Talkf("%s attacks!", a.Name)
	enc.Talkf("%s takes %d damage", enc.Player.Name, a.Strike)
	enc.Player.Vitality -= a.Strike
}
