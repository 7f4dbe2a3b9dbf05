// Package repository defines the dataset archive interface.
//
// The archive keeps imported source datasets by name so a server can be
// seeded from one without re-reading the original file. It stores loader
// input only; edits made through the mutation engine are never written
// back.
package repository
