package hardware

import "fmt"

// RuleKind selects how a slot judges its contents.
type RuleKind int

const (
	// RuleExactMatch requires the installed component to be the target itself.
	RuleExactMatch RuleKind = iota
	// RuleSameCapacity accepts the target or any component with the target's capacity.
	RuleSameCapacity
	// RulePresent accepts any installed component.
	RulePresent
	// RuleCapacity accepts an installed component of exactly Capacity GiB.
	RuleCapacity
	// RuleNonBroken accepts an installed component that is not broken.
	RuleNonBroken
	// RuleAlways accepts anything, including an empty slot.
	RuleAlways
)

// ValidityRule is the per-slot validity predicate.
type ValidityRule struct {
	Kind     RuleKind
	Capacity int
}

func ExactMatch() ValidityRule   { return ValidityRule{Kind: RuleExactMatch} }
func SameCapacity() ValidityRule { return ValidityRule{Kind: RuleSameCapacity} }
func Present() ValidityRule      { return ValidityRule{Kind: RulePresent} }
func NonBroken() ValidityRule    { return ValidityRule{Kind: RuleNonBroken} }
func Always() ValidityRule       { return ValidityRule{Kind: RuleAlways} }

// CapacityOf accepts only components of the given capacity.
func CapacityOf(gib int) ValidityRule {
	return ValidityRule{Kind: RuleCapacity, Capacity: gib}
}

func (r ValidityRule) String() string {
	switch r.Kind {
	case RuleExactMatch:
		return "exact-match"
	case RuleSameCapacity:
		return "same-capacity"
	case RulePresent:
		return "present"
	case RuleCapacity:
		return fmt.Sprintf("capacity=%d", r.Capacity)
	case RuleNonBroken:
		return "non-broken"
	case RuleAlways:
		return "always"
	}
	return fmt.Sprintf("rule(%d)", int(r.Kind))
}

type capacitor interface {
	CapacityGiB() int
}

type breakable interface {
	IsBroken() bool
}

func capacityOf(p any) int {
	if c, ok := p.(capacitor); ok {
		return c.CapacityGiB()
	}
	return 0
}

func isBroken(p any) bool {
	if b, ok := p.(breakable); ok {
		return b.IsBroken()
	}
	return false
}

func evaluate[T Part](r ValidityRule, component, target T) bool {
	var zero T
	switch r.Kind {
	case RuleAlways:
		return true
	case RulePresent:
		return component != zero
	case RuleCapacity:
		return component != zero && capacityOf(component) == r.Capacity
	case RuleSameCapacity:
		if component == target {
			return true
		}
		return component != zero && target != zero && capacityOf(component) == capacityOf(target)
	case RuleNonBroken:
		return component != zero && !isBroken(component)
	default:
		return component == target
	}
}
