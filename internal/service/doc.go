// Package service hosts the live movie graph for concurrent clients.
//
// GraphService owns the single store behind a read/write lock. Every REST
// mutation, every gesture and every analytics run goes through it, so the
// store and engines underneath never see concurrent access.
//
// # Sessions
//
// Each connected pointer gets a Session wrapping its own mutation.Engine.
// Drag and hover state is per session; the graph is shared.
//
// # Event System
//
// Mutations publish events on an EventBus. The hub relays them to SSE
// clients so every open view can refetch what changed.
package service
