// Package preflight provides readiness checks for the binaries and
// directories a conversion run depends on.
//
// The convert command calls RunAll before planning so a missing ffmpeg or an
// unwritable output directory fails fast instead of once per file. The
// status command renders the same results alongside the dependency report.
package preflight
