// Package history journals conversion attempts in a SQLite database.
//
// Every file handled by a batch run produces one row carrying the run
// identifier, the input and output paths, the profile used and the outcome.
// The database is versioned; a mismatched version is reported as
// ErrSchemaMismatch rather than migrated in place.
package history
