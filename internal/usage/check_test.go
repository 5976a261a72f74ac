package usage

import (
	"context"
	"testing"

	"mustuse/internal/annot"
	"mustuse/internal/diag"
	"mustuse/internal/hier"
	"mustuse/internal/source"
)

type fixture struct {
	graph   *hier.Graph
	table   *annot.Table
	methods [4]hier.MethodID // Base, D1, D2, D3
}

// newFixture builds Base <- {D1, D2, D3}, remove(int) everywhere, with the
// given marks, and runs propagation.
func newFixture(t *testing.T, marks [4]hier.Mark) fixture {
	t.Helper()
	b := hier.NewBuilder(nil)

	base := b.AddClass("app.Base")
	var methods [4]hier.MethodID
	methods[0] = b.AddMethod(base, "remove", []string{"int"}, "bool", marks[0], source.Span{File: 0, Start: 5, End: 11})
	for i, name := range []string{"app.D1", "app.D2", "app.D3"} {
		cls := b.AddClass(name)
		b.AddExtends(cls, base)
		methods[i+1] = b.AddMethod(cls, "remove", []string{"int"}, "bool", marks[i+1],
			source.Span{File: source.FileID(i + 1), Start: 5, End: 11})
		b.AddOverride(methods[i+1], methods[0])
	}

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	table, bag, err := annot.Propagate(context.Background(), g, annot.Options{})
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if bag.HasErrors() && marks[1] != hier.MarkExplicitNone {
		t.Fatalf("unexpected propagation conflicts")
	}
	return fixture{graph: g, table: table, methods: methods}
}

func TestCheckDiscardedStrictCall(t *testing.T) {
	// Сценарий 1 спецификации поведения: пометка только на D3, вызов через Base.
	fx := newFixture(t, [4]hier.Mark{hier.MarkNone, hier.MarkNone, hier.MarkNone, hier.MarkMustUse})

	callSpan := source.Span{File: 9, Start: 100, End: 115}
	bag, err := Check(context.Background(), fx.graph, fx.table, []CallSite{
		{Callee: fx.methods[0], Span: callSpan, Usage: Discarded},
	}, Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(items))
	}
	v := items[0]
	if v.Code != diag.UsageViolationStrict || v.Severity != diag.SevError {
		t.Fatalf("violation = %v/%v", v.Code, v.Severity)
	}
	if v.Primary != callSpan {
		t.Fatalf("violation points at %v, want call site", v.Primary)
	}
	// Происхождение — D3.remove, а не callee Base.remove.
	if len(v.Notes) != 1 || v.Notes[0].Span != fx.graph.Method(fx.methods[3]).Span {
		t.Fatalf("origin note = %+v, want D3 declaration", v.Notes)
	}
}

func TestCheckConsumedCallIsCompliant(t *testing.T) {
	fx := newFixture(t, [4]hier.Mark{hier.MarkNone, hier.MarkNone, hier.MarkNone, hier.MarkMustUse})

	bag, err := Check(context.Background(), fx.graph, fx.table, []CallSite{
		{Callee: fx.methods[0], Span: source.Span{File: 9, Start: 1, End: 2}, Usage: Consumed},
	}, Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("consumed call produced %d diagnostics", bag.Len())
	}
}

func TestCheckLegacyViolationIsWarning(t *testing.T) {
	// Сценарий 2: подкласс помечает remove как must_use_legacy — предупреждение
	// распространяется на вызовы через исходный тип.
	fx := newFixture(t, [4]hier.Mark{hier.MarkNone, hier.MarkNone, hier.MarkNone, hier.MarkMustUseLegacy})

	bag, err := Check(context.Background(), fx.graph, fx.table, []CallSite{
		{Callee: fx.methods[0], Span: source.Span{File: 9, Start: 1, End: 2}, Usage: Discarded},
	}, Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(items))
	}
	if items[0].Code != diag.UsageViolationLegacy || items[0].Severity != diag.SevWarning {
		t.Fatalf("violation = %v/%v, want legacy warning", items[0].Code, items[0].Severity)
	}
}

func TestCheckNoneClassificationNeverFires(t *testing.T) {
	// Сценарий 5: семейство без пометок — сброс результата легален.
	fx := newFixture(t, [4]hier.Mark{})

	bag, err := Check(context.Background(), fx.graph, fx.table, []CallSite{
		{Callee: fx.methods[2], Span: source.Span{File: 9, Start: 1, End: 2}, Usage: Discarded},
	}, Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unmarked family produced %d diagnostics", bag.Len())
	}
}

func TestCheckSameFamilyThroughAnyStaticType(t *testing.T) {
	// Сценарий 3: вызов через D1 (с explicit_none) всё равно strict-нарушение.
	fx := newFixture(t, [4]hier.Mark{hier.MarkNone, hier.MarkExplicitNone, hier.MarkNone, hier.MarkMustUse})

	for _, callee := range fx.methods {
		bag, err := Check(context.Background(), fx.graph, fx.table, []CallSite{
			{Callee: callee, Span: source.Span{File: 9, Start: 1, End: 2}, Usage: Discarded},
		}, Options{})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		items := bag.Items()
		if len(items) != 1 || items[0].Code != diag.UsageViolationStrict {
			t.Fatalf("callee %v: got %d diags, want one strict violation", callee, len(items))
		}
	}
}

func TestCheckShardsNeverDropDiagnostics(t *testing.T) {
	// Шардирование не должно терять нарушения: каждый воркер собирает всё,
	// что нашёл, лимит вывода применяется уже после финального слияния.
	fx := newFixture(t, [4]hier.Mark{hier.MarkNone, hier.MarkNone, hier.MarkNone, hier.MarkMustUse})

	const numSites = 150
	sites := make([]CallSite, 0, numSites)
	for i := range numSites {
		sites = append(sites, CallSite{
			Callee: fx.methods[0],
			Span:   source.Span{File: 9, Start: uint32(i * 10), End: uint32(i*10 + 6)},
			Usage:  Discarded,
		})
	}

	for _, jobs := range []int{1, 8} {
		bag, err := Check(context.Background(), fx.graph, fx.table, sites, Options{Jobs: jobs})
		if err != nil {
			t.Fatalf("check jobs=%d: %v", jobs, err)
		}
		if bag.Len() != numSites {
			t.Fatalf("jobs=%d: diagnostics = %d, want %d", jobs, bag.Len(), numSites)
		}
	}
}

func TestCheckShardingIsDeterministic(t *testing.T) {
	fx := newFixture(t, [4]hier.Mark{hier.MarkNone, hier.MarkNone, hier.MarkNone, hier.MarkMustUse})

	sites := make([]CallSite, 0, 40)
	for i := range 40 {
		usage := Discarded
		if i%3 == 0 {
			usage = Consumed
		}
		sites = append(sites, CallSite{
			Callee: fx.methods[i%4],
			Span:   source.Span{File: source.FileID(i % 5), Start: uint32(i * 10), End: uint32(i*10 + 6)},
			Usage:  usage,
		})
	}

	sequential, err := Check(context.Background(), fx.graph, fx.table, sites, Options{Jobs: 1})
	if err != nil {
		t.Fatalf("check sequential: %v", err)
	}
	parallel, err := Check(context.Background(), fx.graph, fx.table, sites, Options{Jobs: 8})
	if err != nil {
		t.Fatalf("check parallel: %v", err)
	}

	a, b := sequential.Items(), parallel.Items()
	if len(a) != len(b) {
		t.Fatalf("len %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Code != b[i].Code || a[i].Primary != b[i].Primary || a[i].Severity != b[i].Severity {
			t.Fatalf("item %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
