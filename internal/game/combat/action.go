package combat

import "fmt"

// Action is one entry of a player's loadout.
//
// Run narrates through enc and reduces target's vitality. Implementations must
// be immutable: the decision engine runs the same value against throwaway
// targets before the real run.
type Action interface {
	Name() string
	Run(enc *Encounter, target *Combatant)
}

// SingleStrike deals Power minus the target's mitigation once.
type SingleStrike struct {
	Power int
}

// Name returns the action label.
func (s SingleStrike) Name() string { return fmt.Sprintf("single strike (%d)", s.Power) }

// Run applies Power - target.Mitigation to target. A negative result heals.
func (s SingleStrike) Run(enc *Encounter, target *Combatant) {
	enc.Talkf("%s takes aim and shoots %s!", enc.Player.Name, target.Name)

	damage := s.Power - target.Mitigation
	target.Vitality -= damage
	enc.Talkf("%s takes %d damage!", target.Name, damage)
}

// TripleStrike fires three hits of Power minus the target's mitigation.
// Mitigation is read once before the first hit.
type TripleStrike struct {
	Power int
}

// Name returns the action label.
func (s TripleStrike) Name() string { return fmt.Sprintf("triple strike (%d)", s.Power) }

// Run applies 3 * (Power - target.Mitigation) to target.
func (s TripleStrike) Run(enc *Encounter, target *Combatant) {
	enc.Talkf("%s fires three rounds into %s!", enc.Player.Name, target.Name)

	perHit := s.Power - target.Mitigation
	target.Vitality -= perHit * 3
	for range 3 {
		enc.Talkf("%s takes %d damage!", target.Name, perHit)
	}
}

// DamageHook computes a scripted strike's damage.
type DamageHook interface {
	StrikeDamage(hook string, power, mitigation int) (int, error)
}

// ScriptedStrike delegates its damage formula to a named hook.
//
// A failing hook deals no damage.
type ScriptedStrike struct {
	Label string
	Power int
	Hook  string
	Hooks DamageHook
}

// Name returns the action label.
func (s ScriptedStrike) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return fmt.Sprintf("scripted strike %s (%d)", s.Hook, s.Power)
}

// Run asks the hook for damage once and applies it once.
func (s ScriptedStrike) Run(enc *Encounter, target *Combatant) {
	enc.Talkf("%s unleashes %s on %s!", enc.Player.Name, s.Name(), target.Name)

	damage, err := s.Hooks.StrikeDamage(s.Hook, s.Power, target.Mitigation)
	if err != nil {
		enc.Talkf("%s fizzles.", s.Name())
		return
	}
	target.Vitality -= damage
	enc.Talkf("%s takes %d damage!", target.Name, damage)
}
