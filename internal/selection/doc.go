// Package selection persists the list of files queued for the next batch
// conversion.
//
// The list is a JSON array of absolute paths guarded by an advisory lock so a
// second invocation never reads a half-written document. Only files whose
// extension belongs to a supported audio or video container are accepted.
package selection
