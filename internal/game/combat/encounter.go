package combat

import (
	"fmt"

	"github.com/google/uuid"
)

// Sink receives narration lines.
type Sink interface {
	Talk(text string)
}

// Encounter is the shared context threaded through every act: the two sides
// and the sink narration goes to. It holds references only; the combatants are
// mutated in place.
type Encounter struct {
	ID        string
	Player    *PlayerSide
	Adversary *AdversarySide
	Sink      Sink
}

// NewEncounter wires both sides and a sink under a fresh encounter ID.
func NewEncounter(player *PlayerSide, adversary *AdversarySide, sink Sink) *Encounter {
	return &Encounter{
		ID:        uuid.New().String(),
		Player:    player,
		Adversary: adversary,
		Sink:      sink,
	}
}

// WithSink returns an encounter sharing enc's ID and combatants but narrating to sink.
func (enc *Encounter) WithSink(sink Sink) *Encounter {
	return &Encounter{
		ID:        enc.ID,
		Player:    enc.Player,
		Adversary: enc.Adversary,
		Sink:      sink,
	}
}

// Talk forwards text to the sink.
func (enc *Encounter) Talk(text string) { enc.Sink.Talk(text) }

// Talkf formats and forwards a line to the sink.
func (enc *Encounter) Talkf(format string, args ...any) {
	enc.Sink.Talk(fmt.Sprintf(format, args...))
}

// Validate checks that enc is fully populated.
//
// Postcondition: nil means both sides, a decider, a non-empty loadout and a sink are present.
func (enc *Encounter) Validate() error {
	switch {
	case enc == nil:
		return fmt.Errorf("%w: encounter is nil", ErrInvalidEncounter)
	case enc.Player == nil:
		return fmt.Errorf("%w: player side is missing", ErrInvalidEncounter)
	case enc.Adversary == nil:
		return fmt.Errorf("%w: adversary side is missing", ErrInvalidEncounter)
	case enc.Sink == nil:
		return fmt.Errorf("%w: sink is missing", ErrInvalidEncounter)
	case enc.Player.decider == nil:
		return fmt.Errorf("%w: player side has no decider", ErrInvalidEncounter)
	case len(enc.Player.loadout) == 0:
		return ErrEmptyLoadout
	}
	return nil
}
