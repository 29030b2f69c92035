// Package task implements the in-process task orchestration core: a bounded
// worker pool behind a pluggable executor strategy, a manager that tracks
// every submitted job's lifecycle and statistics, and a batch coordinator
// that processes item lists in sequential rounds.
package task
