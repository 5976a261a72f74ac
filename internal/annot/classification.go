package annot

import "mustuse/internal/hier"

// Classification is the effective must-use severity of an override family,
// ordered None < Legacy < Strict. It forms a total order with maximum-merge:
// there is no operation that lowers a classification, which is what makes
// "the requirement cannot be removed" a structural guarantee rather than a
// scattered rule.
type Classification uint8

const (
	// ClassNone — семейство без обязательств.
	ClassNone Classification = iota
	// ClassLegacy is the advisory variant: violations are warnings.
	ClassLegacy
	// ClassStrict is the hard variant: violations are errors.
	ClassStrict
)

func (c Classification) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassLegacy:
		return "legacy"
	case ClassStrict:
		return "strict"
	}
	return "unknown"
}

// Merge returns the maximum of two classifications.
func (c Classification) Merge(other Classification) Classification {
	if other > c {
		return other
	}
	return c
}

// fromMark maps an explicit mark to the severity it contributes.
// ExplicitNone contributes nothing; it is handled separately as a removal
// attempt.
func fromMark(m hier.Mark) Classification {
	switch m {
	case hier.MarkMustUse:
		return ClassStrict
	case hier.MarkMustUseLegacy:
		return ClassLegacy
	}
	return ClassNone
}
