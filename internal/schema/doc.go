// Package schema is the registry of legal values for every tunable
// conversion parameter.
//
// A Schema is plain data: named option lists such as video_codecs or
// speed_controls. Every list except the speed multipliers and containers
// carries the "copy" sentinel. The compiled-in defaults can be overridden by
// the schema persisted alongside the profile collection.
package schema
