// Package model defines domain data structures shared across the app: task
// records, status enums, and progress snapshots. Structures are designed for
// copy-by-value snapshots and explicit state transitions.
package model
