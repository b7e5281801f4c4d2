// Package batch converts a list of media files with one stored profile.
//
// Planning resolves each input's category, output path and collision action
// before any engine process starts. A run then invokes the engine once per
// planned item, journals every outcome and keeps going after per-file
// failures. Cancellation stops the run and marks the remaining items
// cancelled.
package batch
