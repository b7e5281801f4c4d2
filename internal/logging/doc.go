// Package logging assembles the slog loggers used by mediaforge.
//
// It owns the console and JSON handlers, level and output plumbing, the
// standardized field keys, and helpers that enforce the cause/impact/next-step
// shape of warnings. NewNop gives tests and optional wiring a logger that
// cannot fail.
package logging
