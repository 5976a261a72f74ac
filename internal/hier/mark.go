package hier

import "fmt"

// Mark is the explicit must-use annotation written on a method declaration,
// exactly as the front end resolved it. The effective classification of a
// whole override family is derived from marks by internal/annot.
type Mark uint8

const (
	// MarkNone — объявление без аннотации.
	MarkNone Mark = iota
	// MarkMustUse is the hard requirement: discarding the result is an error.
	MarkMustUse
	// MarkMustUseLegacy is the advisory variant for un-owned code.
	MarkMustUseLegacy
	// MarkExplicitNone is an attempted removal of the requirement. It is never
	// a legal resting state when the family carries any must-use mark; it
	// exists so the propagator can detect and report the attempt.
	MarkExplicitNone
)

func (m Mark) String() string {
	switch m {
	case MarkNone:
		return "none"
	case MarkMustUse:
		return "must_use"
	case MarkMustUseLegacy:
		return "must_use_legacy"
	case MarkExplicitNone:
		return "explicit_none"
	}
	return "unknown"
}

// ParseMark converts a front-end mark token into a Mark.
// An empty token means no annotation.
func ParseMark(token string) (Mark, error) {
	switch token {
	case "", "none":
		return MarkNone, nil
	case "must_use":
		return MarkMustUse, nil
	case "must_use_legacy":
		return MarkMustUseLegacy, nil
	case "explicit_none":
		return MarkExplicitNone, nil
	}
	return MarkNone, fmt.Errorf("unknown mark token %q", token)
}
