// Package handler implements the HTTP surface of reelgraph.
//
// # Handlers
//
// GraphHandler serves the REST API: graph and component views, node and
// edge CRUD, analytics, import/export and the dataset archive.
//
// GestureHandler upgrades /ws to a WebSocket and drives one service.Session
// per connection, so each browser pointer has its own drag state.
//
// Middleware provides panic recovery, CORS and request logging.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure. The error
// field carries the error kind, for example "duplicate_edge".
package handler
