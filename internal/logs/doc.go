// Package logs reads the mediaforge log file for the `logs` command.
//
// Last returns the newest lines with bounded memory, optionally filtered by a
// substring such as a batch run's correlation id. Follow polls for appended
// lines until its context ends and restarts from the top when the file is
// rotated underneath it.
package logs
