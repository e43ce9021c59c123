// Package state persists migration progress as an append-only JSONL
// journal so an interrupted run can resume without repeating finished
// work.
package state
