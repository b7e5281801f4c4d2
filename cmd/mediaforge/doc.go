// Package main hosts the mediaforge CLI entrypoint and command graph.
//
// The Cobra command tree manages conversion profiles, the selected-file list
// and batch conversions. It centralizes configuration resolution and logging
// setup so subcommands only open the stores they need.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// surfaced here through commands and flags.
package main
