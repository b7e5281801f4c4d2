// Package profile models conversion profiles and persists them.
//
// A profile is a named bundle of stream settings stored under one of two
// categories. Video profiles carry a video section and usually an audio
// section; audio profiles carry only an audio section. Any setting may be
// the "copy" sentinel, which passes the stream parameter through.
//
// Store owns the JSON document that holds every profile plus the option
// schema. It migrates legacy records on load, validates on every write, and
// rewrites the document after each successful mutation.
package profile
