package usage

import (
	"fmt"

	"mustuse/internal/hier"
	"mustuse/internal/source"
)

// Tag describes what the surrounding expression does with a call's result.
// It is pre-computed by the front end from the expression context: feeding an
// assignment, argument position, return position or another expression is
// Consumed; a bare statement is Discarded.
type Tag uint8

const (
	// Consumed — результат вызова куда-то уходит.
	Consumed Tag = iota
	// Discarded — вызов стоит отдельным statement'ом.
	Discarded
)

func (t Tag) String() string {
	switch t {
	case Consumed:
		return "consumed"
	case Discarded:
		return "discarded"
	}
	return "unknown"
}

// ParseTag converts a front-end usage token into a Tag.
func ParseTag(token string) (Tag, error) {
	switch token {
	case "consumed":
		return Consumed, nil
	case "discarded":
		return Discarded, nil
	}
	return Consumed, fmt.Errorf("unknown usage token %q", token)
}

// CallSite is one resolved call expression. Callee is the statically resolved
// declaration; through whichever static type the call was spelled, the family
// merge guarantees an identical classification.
type CallSite struct {
	Callee hier.MethodID
	Span   source.Span
	Usage  Tag
}
