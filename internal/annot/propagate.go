package annot

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"mustuse/internal/diag"
	"mustuse/internal/hier"
)

// Options configure a propagation pass.
type Options struct {
	// Jobs ограничивает число параллельных воркеров; 0 = GOMAXPROCS.
	Jobs int
}

// Propagate computes the effective classification and provenance for every
// override family and detects illegal removal attempts.
//
// Classification is a pure reduction over each family's member marks, so the
// result is independent of input order and of how families are scheduled
// across workers. The returned table is complete and immutable: this call is
// the barrier between graph construction and call-site checking, because a
// single explicit mark anywhere can retroactively change the classification
// of any related declaration.
func Propagate(ctx context.Context, g *hier.Graph, opts Options) (*Table, *diag.Bag, error) {
	numFamilies := g.NumFamilies()
	table := &Table{entries: make([]Entry, numFamilies+1)}
	// Конфликты складываем в слот семейства, чтобы итоговый порядок не
	// зависел от планировщика.
	conflicts := make([][]diag.Diagnostic, numFamilies+1)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(min(jobs, max(numFamilies, 1)))

	for fid := 1; fid <= numFamilies; fid++ {
		group.Go(func(fid hier.FamilyID) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				table.entries[fid], conflicts[fid] = reduceFamily(g, fid)
				return nil
			}
		}(hier.FamilyID(fid)))
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	// Без лимита: обрезка до финального слияния потеряла бы не те элементы.
	bag := diag.NewBag(0)
	for _, ds := range conflicts {
		for _, d := range ds {
			bag.Add(d)
		}
	}
	bag.Sort()

	return table, bag, nil
}

// reduceFamily is the per-family reduction: maximum severity over explicit
// marks, all maximum-severity declarations as origins, and one conflict
// diagnostic per removal attempt when the family's classification is above
// None. The effective classification ignores removal attempts entirely —
// removal never succeeds.
func reduceFamily(g *hier.Graph, fid hier.FamilyID) (Entry, []diag.Diagnostic) {
	members := g.FamilyMembers(fid)

	effective := ClassNone
	for _, id := range members {
		effective = effective.Merge(fromMark(g.Method(id).Mark))
	}

	entry := Entry{Class: effective}
	if effective == ClassNone {
		return entry, nil
	}

	var removals []hier.MethodID
	for _, id := range members { // members идут по возрастанию MethodID
		m := g.Method(id)
		if fromMark(m.Mark) == effective {
			entry.Origins = append(entry.Origins, id)
		}
		if m.Mark == hier.MarkExplicitNone {
			removals = append(removals, id)
		}
	}

	var conflicts []diag.Diagnostic
	for _, id := range removals {
		b := diag.ReportError(nil, diag.AnnotConflictingAnnotation, g.Method(id).Span,
			fmt.Sprintf("cannot remove must-use requirement from %s: the override family is %s",
				g.QualifiedName(id), effective))
		for _, origin := range entry.Origins {
			om := g.Method(origin)
			b.WithNote(om.Span, fmt.Sprintf("requirement introduced by %s here (%s)",
				g.QualifiedName(origin), om.Mark))
		}
		conflicts = append(conflicts, b.Diagnostic())
	}
	return entry, conflicts
}
