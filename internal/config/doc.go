// Package config loads, normalizes, and validates mediaforge configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the FFMPEG_PATH and FFPROBE_PATH environment
// fallbacks. Obtain settings through this package so downstream code receives
// absolute paths and canonical enum values.
package config
