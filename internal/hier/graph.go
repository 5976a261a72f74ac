package hier

import (
	"strings"

	"mustuse/internal/source"
)

// Class is a single class node: interned qualified name, direct superclasses
// (non-owning back-references into the same arena) and declared methods.
type Class struct {
	Name    source.StringID
	Supers  []ClassID
	Methods []MethodID
}

// Method is a single method declaration. Family is assigned exactly once when
// the builder freezes the graph and never changes afterwards.
type Method struct {
	Owner  ClassID
	Name   source.StringID
	Params []source.StringID
	Result source.StringID
	Mark   Mark
	Span   source.Span
	Family FamilyID
}

// Graph is the immutable class/method graph produced by Builder.Build.
// All slices are frozen; readers may share it across goroutines freely.
type Graph struct {
	strings  *source.Interner
	classes  []Class  // индекс 0 зарезервирован под NoClassID
	methods  []Method // индекс 0 зарезервирован под NoMethodID
	families [][]MethodID
}

// Strings returns the interner shared with the builder input.
func (g *Graph) Strings() *source.Interner { return g.strings }

// Class returns the class node or nil if the ID is invalid.
func (g *Graph) Class(id ClassID) *Class {
	if !id.IsValid() || int(id) >= len(g.classes) {
		return nil
	}
	return &g.classes[id]
}

// Method returns the method declaration or nil if the ID is invalid.
func (g *Graph) Method(id MethodID) *Method {
	if !id.IsValid() || int(id) >= len(g.methods) {
		return nil
	}
	return &g.methods[id]
}

// NumClasses reports the number of classes excluding the sentinel.
func (g *Graph) NumClasses() int { return len(g.classes) - 1 }

// NumMethods reports the number of method declarations excluding the sentinel.
func (g *Graph) NumMethods() int { return len(g.methods) - 1 }

// NumFamilies reports the number of override families.
func (g *Graph) NumFamilies() int { return len(g.families) - 1 }

// FamilyOf returns the family of the given method.
func (g *Graph) FamilyOf(id MethodID) FamilyID {
	m := g.Method(id)
	if m == nil {
		return NoFamilyID
	}
	return m.Family
}

// FamilyMembers returns the member declarations of a family, ordered by
// MethodID. Callers must not modify the returned slice.
func (g *Graph) FamilyMembers(id FamilyID) []MethodID {
	if !id.IsValid() || int(id) >= len(g.families) {
		return nil
	}
	return g.families[id]
}

// IsSubclass reports whether derived equals base or reaches it through any
// chain of direct-superclass edges. Diamonds are fine: visited classes are
// skipped, so shared ancestors are walked once.
func (g *Graph) IsSubclass(derived, base ClassID) bool {
	if derived == base {
		return derived.IsValid()
	}
	if !derived.IsValid() || !base.IsValid() {
		return false
	}
	visited := make(map[ClassID]struct{})
	stack := []ClassID{derived}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == base {
			return true
		}
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}
		if c := g.Class(cur); c != nil {
			stack = append(stack, c.Supers...)
		}
	}
	return false
}

// ClassName returns the qualified class name.
func (g *Graph) ClassName(id ClassID) string {
	c := g.Class(id)
	if c == nil {
		return "<invalid>"
	}
	return g.strings.MustLookup(c.Name)
}

// QualifiedName renders "Class.method(param, param)" for diagnostics.
func (g *Graph) QualifiedName(id MethodID) string {
	m := g.Method(id)
	if m == nil {
		return "<invalid>"
	}
	var b strings.Builder
	b.WriteString(g.ClassName(m.Owner))
	b.WriteByte('.')
	b.WriteString(g.strings.MustLookup(m.Name))
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.strings.MustLookup(p))
	}
	b.WriteByte(')')
	return b.String()
}
