// Package annot turns explicit must-use marks into the effective
// classification of whole override families.
//
// Propagation is bidirectional within a family: a mark on any member — base
// or any depth of derived — raises the classification of every member, and
// the result does not depend on which declaration carried the mark. Strict
// dominates Legacy; explicit_none never lowers anything, it only triggers a
// ConflictingAnnotation diagnostic.
package annot
