package hier

import (
	"errors"
	"testing"

	"mustuse/internal/source"
)

// buildFanOut creates Base <- {D1, D2, D3}, each declaring remove(int),
// every derived declaration overriding Base.remove.
func buildFanOut(t *testing.T) (*Builder, [4]MethodID) {
	t.Helper()
	b := NewBuilder(nil)

	base := b.AddClass("app.Base")
	var methods [4]MethodID
	methods[0] = b.AddMethod(base, "remove", []string{"int"}, "bool", MarkNone, source.Span{})

	for i, name := range []string{"app.D1", "app.D2", "app.D3"} {
		cls := b.AddClass(name)
		b.AddExtends(cls, base)
		methods[i+1] = b.AddMethod(cls, "remove", []string{"int"}, "bool", MarkNone, source.Span{})
		b.AddOverride(methods[i+1], methods[0])
	}
	return b, methods
}

func TestBuildMergesOverridesIntoOneFamily(t *testing.T) {
	b, methods := buildFanOut(t)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	fid := g.FamilyOf(methods[0])
	if !fid.IsValid() {
		t.Fatalf("expected valid family")
	}
	for _, m := range methods {
		if g.FamilyOf(m) != fid {
			t.Fatalf("method %v in family %v, want %v", m, g.FamilyOf(m), fid)
		}
	}
	if got := g.FamilyMembers(fid); len(got) != 4 {
		t.Fatalf("family has %d members, want 4", len(got))
	}
	if g.NumFamilies() != 1 {
		t.Fatalf("NumFamilies = %d, want 1", g.NumFamilies())
	}
}

func TestBuildDiamondDoesNotDuplicateFamilies(t *testing.T) {
	b := NewBuilder(nil)

	base := b.AddClass("app.Base")
	d1 := b.AddClass("app.D1")
	d2 := b.AddClass("app.D2")
	grand := b.AddClass("app.GrandChild")
	b.AddExtends(d1, base)
	b.AddExtends(d2, base)
	b.AddExtends(grand, d1)
	b.AddExtends(grand, d2)

	mBase := b.AddMethod(base, "remove", []string{"int"}, "bool", MarkNone, source.Span{})
	m1 := b.AddMethod(d1, "remove", []string{"int"}, "bool", MarkNone, source.Span{})
	m2 := b.AddMethod(d2, "remove", []string{"int"}, "bool", MarkNone, source.Span{})
	mGrand := b.AddMethod(grand, "remove", []string{"int"}, "bool", MarkMustUse, source.Span{})

	b.AddOverride(m1, mBase)
	b.AddOverride(m2, mBase)
	// Лист ромба достижим из Base двумя путями.
	b.AddOverride(mGrand, m1)
	b.AddOverride(mGrand, m2)
	// Повторное ребро не должно ничего менять.
	b.AddOverride(mGrand, m1)

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.NumFamilies() != 1 {
		t.Fatalf("diamond produced %d families, want 1", g.NumFamilies())
	}
	if g.FamilyOf(mGrand) != g.FamilyOf(mBase) {
		t.Fatalf("leaf and root ended in different families")
	}
}

func TestBuildUnrelatedSameSignatureStaysSeparate(t *testing.T) {
	b := NewBuilder(nil)

	a := b.AddClass("app.A")
	z := b.AddClass("zoo.Z")
	ma := b.AddMethod(a, "remove", []string{"int"}, "bool", MarkNone, source.Span{})
	mz := b.AddMethod(z, "remove", []string{"int"}, "bool", MarkNone, source.Span{})

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Структурное совпадение сигнатур без override-ребра не сливает семейства.
	if g.FamilyOf(ma) == g.FamilyOf(mz) {
		t.Fatalf("unrelated methods must not share a family")
	}
	if g.NumFamilies() != 2 {
		t.Fatalf("NumFamilies = %d, want 2", g.NumFamilies())
	}
}

func TestBuildRejectsParameterMismatch(t *testing.T) {
	b := NewBuilder(nil)

	base := b.AddClass("app.Base")
	d1 := b.AddClass("app.D1")
	b.AddExtends(d1, base)
	mBase := b.AddMethod(base, "remove", []string{"int"}, "bool", MarkNone, source.Span{})
	mD1 := b.AddMethod(d1, "remove", []string{"string"}, "bool", MarkNone, source.Span{})
	b.AddOverride(mD1, mBase)

	_, err := b.Build()
	var mismatch *StructuralOverrideMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected StructuralOverrideMismatchError, got %v", err)
	}
	if mismatch.Derived != "app.D1.remove(string)" {
		t.Fatalf("derived = %q", mismatch.Derived)
	}
}

func TestBuildAllowsCovariantReturn(t *testing.T) {
	b := NewBuilder(nil)

	base := b.AddClass("app.Base")
	d1 := b.AddClass("app.D1")
	b.AddExtends(d1, base)

	// Base.clone() -> app.Base, D1.clone() -> app.D1 — допустимая ковариантность.
	mBase := b.AddMethod(base, "clone", nil, "app.Base", MarkNone, source.Span{})
	mD1 := b.AddMethod(d1, "clone", nil, "app.D1", MarkNone, source.Span{})
	b.AddOverride(mD1, mBase)

	if _, err := b.Build(); err != nil {
		t.Fatalf("covariant return rejected: %v", err)
	}
}

func TestBuildRejectsContravariantReturn(t *testing.T) {
	b := NewBuilder(nil)

	base := b.AddClass("app.Base")
	d1 := b.AddClass("app.D1")
	b.AddExtends(d1, base)

	// Расширение возвращаемого типа вверх по иерархии запрещено.
	mBase := b.AddMethod(base, "clone", nil, "app.D1", MarkNone, source.Span{})
	mD1 := b.AddMethod(d1, "clone", nil, "app.Base", MarkNone, source.Span{})
	b.AddOverride(mD1, mBase)

	var mismatch *StructuralOverrideMismatchError
	if _, err := b.Build(); !errors.As(err, &mismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

func TestBuildRejectsUnknownReturnTypeVariance(t *testing.T) {
	b := NewBuilder(nil)

	base := b.AddClass("app.Base")
	d1 := b.AddClass("app.D1")
	b.AddExtends(d1, base)

	// Типы вне анализируемой иерархии должны совпадать дословно.
	mBase := b.AddMethod(base, "path", nil, "ext.Path", MarkNone, source.Span{})
	mD1 := b.AddMethod(d1, "path", nil, "ext.AbsPath", MarkNone, source.Span{})
	b.AddOverride(mD1, mBase)

	var mismatch *StructuralOverrideMismatchError
	if _, err := b.Build(); !errors.As(err, &mismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

func TestQualifiedName(t *testing.T) {
	b := NewBuilder(nil)
	cls := b.AddClass("app.D3")
	m := b.AddMethod(cls, "remove", []string{"int", "bool"}, "bool", MarkMustUse, source.Span{})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := g.QualifiedName(m); got != "app.D3.remove(int, bool)" {
		t.Fatalf("QualifiedName = %q", got)
	}
}

func TestIsSubclassDiamond(t *testing.T) {
	b := NewBuilder(nil)
	base := b.AddClass("app.Base")
	d1 := b.AddClass("app.D1")
	d2 := b.AddClass("app.D2")
	grand := b.AddClass("app.GrandChild")
	b.AddExtends(d1, base)
	b.AddExtends(d2, base)
	b.AddExtends(grand, d1)
	b.AddExtends(grand, d2)

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !g.IsSubclass(grand, base) {
		t.Fatalf("grand must reach base")
	}
	if g.IsSubclass(base, grand) {
		t.Fatalf("base must not reach grand")
	}
	if !g.IsSubclass(d1, d1) {
		t.Fatalf("class is a subclass of itself")
	}
}
