package annot

import "mustuse/internal/hier"

// Entry is the propagation result for one override family.
type Entry struct {
	Class Classification
	// Origins are all declarations whose explicit mark achieves the maximum
	// severity, in MethodID order. Diagnostics cite them instead of the
	// callee, so a violation always points at the place the requirement was
	// written by hand.
	Origins []hier.MethodID
}

// Table maps every override family to its effective classification and
// provenance. It is written exactly once by Propagate and read-only for the
// rest of the analysis; the checker never observes a partial table.
type Table struct {
	entries []Entry // индекс 0 зарезервирован под NoFamilyID
}

// Classification returns the effective classification of the family.
func (t *Table) Classification(id hier.FamilyID) Classification {
	if e := t.entry(id); e != nil {
		return e.Class
	}
	return ClassNone
}

// Origins returns the declarations responsible for the classification.
// Callers must not modify the returned slice.
func (t *Table) Origins(id hier.FamilyID) []hier.MethodID {
	if e := t.entry(id); e != nil {
		return e.Origins
	}
	return nil
}

// ForMethod resolves the classification of a method through its family.
func (t *Table) ForMethod(g *hier.Graph, id hier.MethodID) Classification {
	return t.Classification(g.FamilyOf(id))
}

// Len reports the number of families covered by the table.
func (t *Table) Len() int { return len(t.entries) - 1 }

func (t *Table) entry(id hier.FamilyID) *Entry {
	if !id.IsValid() || int(id) >= len(t.entries) {
		return nil
	}
	return &t.entries[id]
}
