// Package hier builds the immutable class/method graph the engine analyzes.
//
// The front end supplies classes, method declarations and already-resolved
// override edges; the builder re-validates override signatures (exact
// selector and parameters, covariant returns only within the analyzed
// hierarchy) and groups declarations into override families with union-find.
// A family is the transitive closure of "overrides": if A overrides B and B
// overrides C, all three belong to one family, and diamond inheritance merges
// families instead of duplicating them. Every method belongs to exactly one
// family once Build returns.
//
// The resulting Graph is written once and read-only afterwards, so the
// propagation and checking phases may share it across goroutines without
// locks.
package hier
