// Package cli defines the Cobra command tree for the kilib CLI. Each file in
// this package registers one top-level command (sync, import, move-models,
// etc.) with the root command. Commands only parse flags, pick defaults from
// the config layer and format output; the work happens in internal packages.
package cli
