// Package analytics computes read-only metrics over an undirected graph view.
//
// All functions are pure: they read a View and never write to it. Metrics
// that have no meaningful value for the input return a sentinel error
// (ErrEmptyGraph, ErrDensityUndefined) rather than zero or NaN.
//
// Diameter and average path length are measured over the largest connected
// component only. When several components share the largest size, the one
// discovered first in node iteration order wins.
//
// Every traversal is an iterative breadth-first search, so graph size never
// affects stack depth.
package analytics
