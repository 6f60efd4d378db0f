// Package ai implements the player's one-ply decision engine.
//
// Every candidate action is previewed against a throwaway copy of the adversary
// inside a silenced encounter; the action leaving the adversary with the least
// vitality wins.
package ai

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/narration"
	"github.com/cory-johannsen/duel/internal/observability"
)

// ErrNoCandidate is returned when no action beats the no-action baseline.
var ErrNoCandidate = errors.New("ai: no candidate action")

// Evaluation is one previewed candidate.
type Evaluation struct {
	Action combat.Action
	// Priority is the negated vitality the adversary would be left with.
	Priority int
}

// Chooser is the decision engine. It holds no per-encounter state and
// satisfies combat.Decider.
type Chooser struct {
	logger *zap.Logger
}

// NewChooser constructs a Chooser. A nil logger disables logging.
func NewChooser(logger *zap.Logger) *Chooser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chooser{logger: logger}
}

// Evaluate previews each action in loadout order and returns its priority.
//
// Only the adversary is copied. The player side seen by each action is the
// live one, so an action that mutates its own actor would leak that mutation.
//
// Precondition: enc.Adversary must be non-nil.
// Postcondition: enc.Adversary is unchanged and enc.Sink receives nothing.
func (c *Chooser) Evaluate(enc *combat.Encounter, loadout []combat.Action) []Evaluation {
	preview := enc.WithSink(narration.Silent{})
	out := make([]Evaluation, 0, len(loadout))
	for _, action := range loadout {
		probe := enc.Adversary.Combatant
		action.Run(preview, &probe)
		out = append(out, Evaluation{Action: action, Priority: -probe.Vitality})
	}
	return out
}

// Choose returns the candidate with the highest priority. Ties go to the
// earliest action in loadout order.
//
// Postcondition: returns ErrNoCandidate when loadout is empty or no action
// strictly improves on leaving the adversary untouched.
func (c *Chooser) Choose(enc *combat.Encounter, loadout []combat.Action) (combat.Action, error) {
	if len(loadout) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoCandidate, combat.ErrEmptyLoadout)
	}

	best := Evaluation{Priority: -enc.Adversary.Vitality}
	evals := c.Evaluate(enc, loadout)
	for _, ev := range evals {
		if ev.Priority > best.Priority {
			best = ev
		}
	}

	if c.logger.Core().Enabled(zap.DebugLevel) {
		for _, ev := range evals {
			c.logger.Debug("action evaluated",
				zap.String(observability.EncounterKey, enc.ID),
				zap.String("action", ev.Action.Name()),
				zap.Int("priority", ev.Priority),
			)
		}
	}

	if best.Action == nil {
		return nil, fmt.Errorf("%w: nothing damages %s (vitality %d, mitigation %d)",
			ErrNoCandidate, enc.Adversary.Name, enc.Adversary.Vitality, enc.Adversary.Mitigation)
	}

	c.logger.Debug("action chosen",
		zap.String(observability.EncounterKey, enc.ID),
		zap.String("action", best.Action.Name()),
		zap.Int("priority", best.Priority),
	)
	return best.Action, nil
}
