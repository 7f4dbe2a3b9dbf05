// Package store owns the in-memory node and edge collections and is the only
// writer of graph state.
//
// Every exported mutation either succeeds completely or returns an error and
// leaves the store untouched. After any call:
//
//   - both endpoints of every edge are present,
//   - no edge joins a node to itself,
//   - at most one edge exists per unordered pair, whichever endpoint was
//     recorded as source,
//   - node ids are unique.
//
// Edges are keyed by their orientation-free domain.PairKey, so lookups,
// removals and duplicate checks never depend on the order the endpoints were
// given in.
//
// A Store is not safe for concurrent use. Hosts that share one across
// goroutines wrap each call in a single lock (see internal/service).
package store
