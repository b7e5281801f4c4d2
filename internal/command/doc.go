// Package command turns a stored profile plus an input and output path into
// the ordered ffmpeg argument list that performs the conversion.
//
// The list always starts with "-i <input>" and ends with the output path;
// engine-level flags such as overwrite and progress reporting are added by
// the runner. Speed changes become a setpts video filter and a chain of
// atempo stages, each bounded to [0.5, 2.0].
package command
