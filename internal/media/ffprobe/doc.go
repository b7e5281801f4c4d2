// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs the executable and returns a Result; Parse decodes output that
// was captured elsewhere. Helper methods on Result pick the first video and
// audio streams, parse fractional frame rates, and resolve a media duration
// with stream-level fallbacks when the container omits one.
package ffprobe
