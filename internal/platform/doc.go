// Package platform provides cross-platform filesystem helpers: relative paths
// rendered with forward slashes on every host, and file moves that fall back
// to copy-and-remove when a rename crosses filesystem boundaries.
package platform
