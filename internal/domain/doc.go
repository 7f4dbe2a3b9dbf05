// Package domain defines the core types for the reelgraph movie relation graph.
//
// This package contains the value types shared by the store, the mutation
// engine, the analytics engine and the transports. It has no dependencies on
// storage or networking.
//
// # Core Types
//
// Node is a graph vertex: a unique string id plus an open attribute bag
// (name, rank, year, imdb_rating, genre, ...). Analytics never inspects the
// attributes.
//
// Edge is an unordered pair of node ids. Source and Target record the order
// the edge was created in, but nothing downstream gives that order meaning.
// EdgeID derives the same id for {a,b} and {b,a}.
//
// EdgeView is the resolved form of an edge handed to the presentation layer,
// carrying both endpoint nodes and the transient Deleted marker used while
// an edge is animated out.
//
// # Snapshots
//
// GraphFragment is loader input and export output: nodes and edges exactly as
// read from or written to a file.
//
// Graph is a materialized copy of some or all of a store, such as the
// largest connected component. It owns its nodes and edges; mutating it
// never affects the store it came from.
package domain
