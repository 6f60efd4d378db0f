package combat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrRoundLimit is returned when an encounter exhausts its round cap without a winner.
var ErrRoundLimit = errors.New("combat: round limit reached")

// State is a turn engine state.
type State int

const (
	PlayerTurn State = iota
	EnemyTurn
	PlayerWins
	EnemyWins
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case PlayerTurn:
		return "player turn"
	case EnemyTurn:
		return "enemy turn"
	case PlayerWins:
		return "player wins"
	case EnemyWins:
		return "enemy wins"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends the encounter.
func (s State) Terminal() bool { return s == PlayerWins || s == EnemyWins }

// Result summarizes a finished encounter.
type Result struct {
	Outcome State
	// Rounds counts player turns taken, including the final one.
	Rounds int
	// PlayerVitality and AdversaryVitality are the final values, unclamped.
	PlayerVitality    int
	AdversaryVitality int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxRounds caps the number of rounds; n <= 0 means unbounded.
func WithMaxRounds(n int) Option {
	return func(e *Engine) { e.maxRounds = n }
}

// Engine alternates the two sides over one Encounter until one of them is down.
//
// Each Step is one atomic act+check; the sides never interleave.
type Engine struct {
	enc       *Encounter
	state     State
	rounds    int
	maxRounds int
	announced bool
	logger    *zap.Logger
}

// NewEngine validates enc and returns an engine in PlayerTurn.
//
// Postcondition: Returns an error wrapping ErrInvalidEncounter or ErrEmptyLoadout
// if enc is not fully populated; enc is untouched in that case.
func NewEngine(enc *Encounter, opts ...Option) (*Engine, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{enc: enc, state: PlayerTurn, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Rounds returns the number of completed player turns.
func (e *Engine) Rounds() int { return e.rounds }

// Step performs the current side's act and its terminal check.
//
// Postcondition: a terminal engine is left unchanged. On error the state does
// not advance and no combatant has been mutated by this call.
func (e *Engine) Step() (State, error) {
	if !e.announced {
		e.announce()
	}

	switch e.state {
	case PlayerTurn:
		if e.maxRounds > 0 && e.rounds >= e.maxRounds {
			return e.state, fmt.Errorf("%w after %d rounds", ErrRoundLimit, e.rounds)
		}
		if err := e.enc.Player.Act(e.enc); err != nil {
			return e.state, fmt.Errorf("round %d: player turn: %w", e.rounds+1, err)
		}
		e.rounds++
		if e.enc.Adversary.Down() {
			e.finish(PlayerWins)
		} else {
			e.transition(EnemyTurn)
		}

	case EnemyTurn:
		e.enc.Adversary.Act(e.enc)
		if e.enc.Player.Down() {
			e.finish(EnemyWins)
		} else {
			e.transition(PlayerTurn)
		}
	}
	return e.state, nil
}

// Run steps until a terminal state is reached or an error occurs.
//
// Postcondition: on success Result.Outcome is PlayerWins or EnemyWins.
func (e *Engine) Run() (Result, error) {
	for !e.state.Terminal() {
		if _, err := e.Step(); err != nil {
			e.logger.Warn("encounter stopped",
				zap.String("state", e.state.String()),
				zap.Int("rounds", e.rounds),
				zap.Error(err),
			)
			return e.result(), err
		}
	}
	return e.result(), nil
}

// Run is the single entry point: it drives a fully populated encounter to completion.
func Run(enc *Encounter, opts ...Option) (Result, error) {
	e, err := NewEngine(enc, opts...)
	if err != nil {
		return Result{}, err
	}
	return e.Run()
}

func (e *Engine) announce() {
	e.announced = true
	e.enc.Talkf("%s HP: %d", e.enc.Player.Name, e.enc.Player.Vitality)
	e.enc.Talkf("%s HP: %d", e.enc.Adversary.Name, e.enc.Adversary.Vitality)
	e.logger.Info("encounter started",
		zap.Int("player_vitality", e.enc.Player.Vitality),
		zap.Int("adversary_vitality", e.enc.Adversary.Vitality),
		zap.Int("max_rounds", e.maxRounds),
	)
}

func (e *Engine) transition(next State) {
	e.logger.Debug("turn complete",
		zap.String("from", e.state.String()),
		zap.String("to", next.String()),
		zap.Int("round", e.rounds),
		zap.Int("player_vitality", e.enc.Player.Vitality),
		zap.Int("adversary_vitality", e.enc.Adversary.Vitality),
	)
	e.state = next
}

func (e *Engine) finish(outcome State) {
	e.transition(outcome)
	switch outcome {
	case PlayerWins:
		e.enc.Talkf("%s collapses!", e.enc.Adversary.Name)
		e.enc.Talkf("%s wins", e.enc.Player.Name)
	case EnemyWins:
		e.enc.Talkf("%s collapses!", e.enc.Player.Name)
		e.enc.Talkf("%s wins", e.enc.Adversary.Name)
	}
	e.logger.Info("encounter finished",
		zap.String("outcome", outcome.String()),
		zap.Int("rounds", e.rounds),
	)
}

func (e *Engine) result() Result {
	return Result{
		Outcome:           e.state,
		Rounds:            e.rounds,
		PlayerVitality:    e.enc.Player.Vitality,
		AdversaryVitality: e.enc.Adversary.Vitality,
	}
}
