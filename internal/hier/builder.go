package hier

import (
	"fmt"

	"fortio.org/safecast"

	"mustuse/internal/source"
)

// Builder accumulates classes, methods and explicit override edges in any
// order, then freezes them into an immutable Graph. Override edges come
// already resolved from the front end; the builder only re-validates their
// signatures and merges them into families.
type Builder struct {
	strings   *source.Interner
	classes   []Class
	methods   []Method
	overrides [][2]MethodID // {derived, base}
	byName    map[source.StringID]ClassID
}

// NewBuilder creates an empty builder. A nil interner allocates a fresh one.
func NewBuilder(strings *source.Interner) *Builder {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		strings: strings,
		classes: make([]Class, 1, 32), // индекс 0 зарезервирован под NoClassID
		methods: make([]Method, 1, 64),
		byName:  make(map[source.StringID]ClassID),
	}
}

// Strings returns the interner used for all names.
func (b *Builder) Strings() *source.Interner { return b.strings }

// AddClass allocates a class node for the qualified name. Repeated calls for
// one name return the existing node: dumps may mention a class before its
// defining unit is decoded.
func (b *Builder) AddClass(name string) ClassID {
	nameID := b.strings.Intern(name)
	if id, ok := b.byName[nameID]; ok {
		return id
	}
	value, err := safecast.Conv[uint32](len(b.classes))
	if err != nil {
		panic(fmt.Errorf("class arena overflow: %w", err))
	}
	id := ClassID(value)
	b.classes = append(b.classes, Class{Name: nameID})
	b.byName[nameID] = id
	return id
}

// LookupClass returns the class registered for the qualified name.
func (b *Builder) LookupClass(name string) (ClassID, bool) {
	id, ok := b.byName[b.strings.Intern(name)]
	return id, ok
}

// AddExtends records a direct superclass edge. The reference is non-owning;
// duplicates are dropped so diamond paths stay idempotent.
func (b *Builder) AddExtends(child, super ClassID) {
	if !child.IsValid() || !super.IsValid() || child == super {
		return
	}
	c := &b.classes[child]
	for _, existing := range c.Supers {
		if existing == super {
			return
		}
	}
	c.Supers = append(c.Supers, super)
}

// AddMethod allocates a method declaration owned by the class.
func (b *Builder) AddMethod(owner ClassID, name string, params []string, result string, mark Mark, span source.Span) MethodID {
	value, err := safecast.Conv[uint32](len(b.methods))
	if err != nil {
		panic(fmt.Errorf("method arena overflow: %w", err))
	}
	id := MethodID(value)

	paramIDs := make([]source.StringID, len(params))
	for i, p := range params {
		paramIDs[i] = b.strings.Intern(p)
	}
	b.methods = append(b.methods, Method{
		Owner:  owner,
		Name:   b.strings.Intern(name),
		Params: paramIDs,
		Result: b.strings.Intern(result),
		Mark:   mark,
		Span:   span,
	})
	if owner.IsValid() {
		b.classes[owner].Methods = append(b.classes[owner].Methods, id)
	}
	return id
}

// AddOverride records an explicit override edge: derived overrides base.
// Validation happens in Build, once all classes are known.
func (b *Builder) AddOverride(derived, base MethodID) {
	b.overrides = append(b.overrides, [2]MethodID{derived, base})
}

// Build validates all override edges, merges them into override families and
// returns the frozen graph. A signature mismatch aborts with
// *StructuralOverrideMismatchError; no partial graph is ever returned.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		strings: b.strings,
		classes: b.classes,
		methods: b.methods,
	}

	for _, edge := range b.overrides {
		if err := b.checkOverride(g, edge[0], edge[1]); err != nil {
			return nil, err
		}
	}

	// union-find: сливаем методы, связанные override-рёбрами.
	// Повторное применение того же ребра идемпотентно, ромбы не плодят
	// лишних семейств.
	sets := newDSU(len(b.methods))
	for _, edge := range b.overrides {
		sets.union(uint32(edge[0]), uint32(edge[1]))
	}

	// Нумеруем семейства детерминированно: семейство получает номер при
	// первом появлении своего корня при обходе методов по возрастанию ID.
	g.families = make([][]MethodID, 1, len(b.methods))
	familyOf := make(map[uint32]FamilyID, len(b.methods))
	for i := 1; i < len(b.methods); i++ {
		root := sets.find(uint32(i))
		fid, ok := familyOf[root]
		if !ok {
			value, err := safecast.Conv[uint32](len(g.families))
			if err != nil {
				return nil, fmt.Errorf("family arena overflow: %w", err)
			}
			fid = FamilyID(value)
			familyOf[root] = fid
			g.families = append(g.families, nil)
		}
		g.methods[i].Family = fid
		g.families[fid] = append(g.families[fid], MethodID(i))
	}

	return g, nil
}

// checkOverride validates one explicit override edge: selector and parameter
// list must match exactly; the return type may vary covariantly, i.e. both
// returns name classes in the graph and the overriding return is a subclass
// of the overridden one.
func (b *Builder) checkOverride(g *Graph, derived, base MethodID) error {
	dm, bm := g.Method(derived), g.Method(base)
	if dm == nil || bm == nil {
		return &StructuralOverrideMismatchError{
			Derived: g.QualifiedName(derived),
			Base:    g.QualifiedName(base),
			Reason:  "override edge references an unknown declaration",
		}
	}

	mismatch := func(reason string) error {
		return &StructuralOverrideMismatchError{
			Derived:     g.QualifiedName(derived),
			Base:        g.QualifiedName(base),
			Reason:      reason,
			DerivedSpan: dm.Span,
			BaseSpan:    bm.Span,
		}
	}

	if dm.Name != bm.Name {
		return mismatch("selector differs")
	}
	if len(dm.Params) != len(bm.Params) {
		return mismatch("parameter count differs")
	}
	for i := range dm.Params {
		if dm.Params[i] != bm.Params[i] {
			return mismatch(fmt.Sprintf("parameter %d type differs (%s vs %s)",
				i+1, b.strings.MustLookup(dm.Params[i]), b.strings.MustLookup(bm.Params[i])))
		}
	}
	if dm.Result != bm.Result && !b.covariantResult(g, dm.Result, bm.Result) {
		return mismatch(fmt.Sprintf("return type %s is not covariant with %s",
			b.strings.MustLookup(dm.Result), b.strings.MustLookup(bm.Result)))
	}
	return nil
}

// covariantResult reports whether derived may narrow the return type of base:
// both must name classes known to the graph, and derived must reach base
// through superclass edges. Types outside the analyzed hierarchy must match
// exactly.
func (b *Builder) covariantResult(g *Graph, derived, base source.StringID) bool {
	dc, ok := b.byName[derived]
	if !ok {
		return false
	}
	bc, ok := b.byName[base]
	if !ok {
		return false
	}
	return g.IsSubclass(dc, bc)
}
