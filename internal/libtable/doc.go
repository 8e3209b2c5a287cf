// Package libtable scans a shared KiCad library root and renders the
// sym-lib-table and fp-lib-table files that point a project at it.
//
// Rendering is pure: the same Library and relative root always produce the
// same bytes, which is what lets callers detect "unchanged" by hashing.
package libtable
