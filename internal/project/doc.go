// Package project finds the KiCad projects a table sync applies to.
//
// Projects are either discovered by walking a repository for *.kicad_pro
// files, minus anything matched by the repository's .kicadprojignore, or
// listed explicitly in a YAML manifest:
//
//	requires: ">= 0.3.0"
//	projects:
//	  - boards/ecu
//	  - boards/bms
//
// Manifest entries that do not exist on disk are dropped without error.
package project
