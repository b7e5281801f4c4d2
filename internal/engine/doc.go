// Package engine runs ffmpeg for a single conversion and reports progress.
//
// The runner prepends "-y -progress pipe:1 -nostats" to the argument list the
// command builder produced, parses the key=value progress stream on stdout,
// keeps the tail of stderr for error messages, and verifies that a non-empty
// output file exists once ffmpeg exits.
package engine
