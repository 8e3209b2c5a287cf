// Package tablesync regenerates the library tables of every KiCad project in
// a repository so they point at a shared library root.
//
// A run is one pass: find projects, compute each project's relative path to
// the library root, render both tables and hand them to a Writer that only
// touches a file when its content hash changes. Existing files are backed up
// before they are replaced.
package tablesync
