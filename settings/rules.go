package settings

import (
	"fmt"

	"github.com/gogpu/gfxhal/chip"
)

// Scope orders workaround rules from general to specific.
type Scope uint8

// Rule scopes. Within a cascade all generation rules run first, then
// sub-generation rules, then revision rules.
const (
	ScopeGeneration Scope = iota
	ScopeSubGeneration
	ScopeRevision
)

func (s Scope) String() string {
	switch s {
	case ScopeGeneration:
		return "generation"
	case ScopeSubGeneration:
		return "sub-generation"
	case ScopeRevision:
		return "revision"
	default:
		return fmt.Sprintf("Scope(%d)", uint8(s))
	}
}

// Env is what a rule sees: the capability snapshot, the detected hardware
// bugs and the record as resolved so far.
type Env struct {
	Caps     *chip.Capabilities
	Bugs     chip.HardwareBugs
	Settings *Settings

	overridden map[string]struct{}
}

// Overridden reports whether the named setting was supplied as a raw
// override.
func (e *Env) Overridden(name string) bool {
	_, ok := e.overridden[name]
	return ok
}

// Assignment sets one field. Value is used as is unless From is set, in
// which case From computes the value when the rule fires.
type Assignment struct {
	Field string
	Value any
	From  func(*Env) any
}

// Rule is a scoped, ordered correction to the settings record.
type Rule struct {
	Scope Scope
	Name  string

	// When gates the rule. A nil When always fires.
	When func(*Env) bool

	Set []Assignment
}

// Apply runs the rule against env. It reports whether the rule fired.
func (r *Rule) Apply(env *Env) (bool, error) {
	if r.When != nil && !r.When(env) {
		return false, nil
	}
	for _, a := range r.Set {
		v := a.Value
		if a.From != nil {
			v = a.From(env)
		}
		if _, err := env.Settings.set(a.Field, v); err != nil {
			return true, fmt.Errorf("settings: rule %s: %w", r.Name, err)
		}
	}
	return true, nil
}

// ApplyRules runs rules left to right, so a later assignment to a field
// wins over an earlier one.
func ApplyRules(env *Env, rules []Rule) error {
	for i := range rules {
		fired, err := rules[i].Apply(env)
		if err != nil {
			return err
		}
		if fired {
			slogger().Debug("settings: rule applied", "rule", rules[i].Name, "scope", rules[i].Scope)
		}
	}
	return nil
}

// Cascade returns the ordered rule list for rev: its generation's rules,
// then each of its sub-generation groups in table order, then its own
// rules. It returns nil for an unknown revision.
func Cascade(rev chip.Revision) []Rule {
	if _, err := chip.Lookup(rev); err != nil {
		return nil
	}
	var out []Rule
	out = append(out, generationRules[rev.Level().Generation()]...)
	for _, g := range rev.Groups() {
		out = append(out, groupRules[g]...)
	}
	out = append(out, revisionRules[rev]...)
	return out
}

// flags assigns true to each named field.
func flags(names ...string) []Assignment {
	out := make([]Assignment, len(names))
	for i, n := range names {
		out[i] = Assignment{Field: n, Value: true}
	}
	return out
}

// hasBug assigns whether the hardware has bug b.
func hasBug(field string, b chip.HardwareBugs) Assignment {
	return Assignment{Field: field, From: func(e *Env) any { return e.Bugs.Has(b) }}
}
