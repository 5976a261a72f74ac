package driver

import (
	"context"
	"fmt"

	"mustuse/internal/annot"
	"mustuse/internal/diag"
	"mustuse/internal/dump"
	"mustuse/internal/hier"
	"mustuse/internal/observ"
	"mustuse/internal/source"
	"mustuse/internal/usage"
)

// Request describes one analysis run.
type Request struct {
	// Paths are the dump files to merge into a single whole-program graph.
	Paths []string
	// Jobs ограничивает параллелизм всех фаз; 0 = GOMAXPROCS.
	Jobs int
	// MaxDiagnostics bounds the final bag. 0 falls back to a default.
	MaxDiagnostics int
	// Progress receives stage events for the UI; nil discards them.
	Progress ProgressSink
}

// Result is the outcome of a completed run. Bag holds the merged, sorted and
// deduplicated diagnostics of all phases.
type Result struct {
	FileSet *source.FileSet
	Graph   *hier.Graph
	Table   *annot.Table
	Bag     *diag.Bag
	Timing  observ.Report
}

const defaultMaxDiagnostics = 100

// Analyze runs the whole engine: decode → build → propagate → check.
//
// The phase order is a hard contract. Build must see every merged document
// before families exist; Propagate must finish before any call site is
// checked, because one explicit mark anywhere can retroactively change the
// classification of every related declaration. There is no phase re-entry
// and no partial propagation — a hierarchy change requires a full re-run.
//
// Malformed input (undecodable dump, dangling reference, structural override
// mismatch) aborts with an error and no Result; diagnostics never abort.
func Analyze(ctx context.Context, req Request) (Result, error) {
	if len(req.Paths) == 0 {
		return Result{}, fmt.Errorf("no dump files to analyze")
	}
	sink := req.Progress
	if sink == nil {
		sink = NopSink{}
	}
	maxDiags := req.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}

	timer := observ.NewTimer()

	// Фаза 0: параллельное декодирование дампов.
	idx := timer.Begin("decode")
	docs, err := decodeAll(ctx, req.Paths, req.Jobs, sink)
	if err != nil {
		return Result{}, err
	}
	timer.End(idx, fmt.Sprintf("%d files", len(docs)))

	// Фаза 1: единый граф по всем юнитам. Барьер: никакой читатель не видит
	// граф до завершения Build.
	idx = timer.Begin("build")
	sink.OnEvent(Event{Stage: StageBuild, Status: StatusWorking})
	fileSet := source.NewFileSet()
	builder := hier.NewBuilder(nil)
	sites, err := dump.Resolve(docs, fileSet, builder)
	if err != nil {
		sink.OnEvent(Event{Stage: StageBuild, Status: StatusError, Err: err})
		return Result{}, err
	}
	graph, err := builder.Build()
	if err != nil {
		sink.OnEvent(Event{Stage: StageBuild, Status: StatusError, Err: err})
		return Result{}, err
	}
	sink.OnEvent(Event{Stage: StageBuild, Status: StatusDone})
	timer.End(idx, fmt.Sprintf("%d classes, %d methods, %d families",
		graph.NumClasses(), graph.NumMethods(), graph.NumFamilies()))

	// Фаза 2: распространение аннотаций. Второй барьер перед проверкой.
	idx = timer.Begin("propagate")
	sink.OnEvent(Event{Stage: StagePropagate, Status: StatusWorking})
	table, conflicts, err := annot.Propagate(ctx, graph, annot.Options{Jobs: req.Jobs})
	if err != nil {
		sink.OnEvent(Event{Stage: StagePropagate, Status: StatusError, Err: err})
		return Result{}, err
	}
	sink.OnEvent(Event{Stage: StagePropagate, Status: StatusDone})
	timer.End(idx, fmt.Sprintf("%d conflicts", conflicts.Len()))

	// Фаза 3: проверка call-site'ов по финализированной таблице.
	idx = timer.Begin("check")
	sink.OnEvent(Event{Stage: StageCheck, Status: StatusWorking})
	violations, err := usage.Check(ctx, graph, table, sites, usage.Options{Jobs: req.Jobs})
	if err != nil {
		sink.OnEvent(Event{Stage: StageCheck, Status: StatusError, Err: err})
		return Result{}, err
	}
	sink.OnEvent(Event{Stage: StageCheck, Status: StatusDone})
	timer.End(idx, fmt.Sprintf("%d call sites", len(sites)))

	// Лимит применяется ровно один раз, к уже отсортированному полному
	// набору: префикс не зависит от числа воркеров и порядка входов.
	bag := diag.NewBag(0)
	bag.Merge(conflicts)
	bag.Merge(violations)
	bag.Dedup()
	bag.Sort()
	bag.Truncate(maxDiags)

	return Result{
		FileSet: fileSet,
		Graph:   graph,
		Table:   table,
		Bag:     bag,
		Timing:  timer.Report(),
	}, nil
}
