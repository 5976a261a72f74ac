package usage

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"mustuse/internal/annot"
	"mustuse/internal/diag"
	"mustuse/internal/hier"
)

// Options configure a checking pass.
type Options struct {
	// Jobs ограничивает число параллельных воркеров; 0 = GOMAXPROCS.
	Jobs int
}

// Check classifies every call site against the finalized annotation table and
// returns the violation diagnostics. The table must be complete: this phase
// never runs concurrently with propagation.
//
// Sites are independent units of work with no shared mutable state, so they
// are sharded across workers; each worker owns a private bag and only the
// final merge synchronizes. Shards are merged in input order, which together
// with Bag.Sort makes the output independent of scheduling. Bags are never
// capped here: the caller gets the complete set and truncates after the
// final merge, otherwise the surviving subset would depend on shard count.
func Check(ctx context.Context, g *hier.Graph, table *annot.Table, sites []CallSite, opts Options) (*diag.Bag, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	if len(sites) == 0 {
		return diag.NewBag(0), nil
	}

	numShards := min(jobs, len(sites))
	shardBags := make([]*diag.Bag, numShards)
	chunk := (len(sites) + numShards - 1) / numShards

	group, gctx := errgroup.WithContext(ctx)
	for shard := range numShards {
		group.Go(func(shard int) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				lo := shard * chunk
				hi := min(lo+chunk, len(sites))
				bag := diag.NewBag(0)
				reporter := diag.BagReporter{Bag: bag}
				for i := lo; i < hi; i++ {
					checkSite(g, table, &sites[i], reporter)
				}
				shardBags[shard] = bag
				return nil
			}
		}(shard))
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := diag.NewBag(0)
	for _, bag := range shardBags {
		out.Merge(bag)
	}
	out.Sort()
	return out, nil
}

// checkSite applies the classification rule to one call site. Side effects of
// argument evaluation are irrelevant: only the usage tag decides.
func checkSite(g *hier.Graph, table *annot.Table, site *CallSite, reporter diag.Reporter) {
	cls := table.ForMethod(g, site.Callee)
	if cls == annot.ClassNone || site.Usage == Consumed {
		return
	}

	code := diag.UsageViolationStrict
	sev := diag.SevError
	if cls == annot.ClassLegacy {
		code = diag.UsageViolationLegacy
		sev = diag.SevWarning
	}

	b := diag.NewReportBuilder(reporter, sev, code, site.Span,
		fmt.Sprintf("result of %s must be used", g.QualifiedName(site.Callee)))
	// Происхождение берём из таблицы, не из самого callee: требование могло
	// быть написано на любом объявлении семейства.
	for _, origin := range table.Origins(g.FamilyOf(site.Callee)) {
		om := g.Method(origin)
		b.WithNote(om.Span, fmt.Sprintf("required to be used by %s (%s)",
			g.QualifiedName(origin), om.Mark))
	}
	b.Emit()
}
