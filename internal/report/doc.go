// Package report renders the migration state journal as CSV and logs
// per-kind status counts, giving operators a quick view of how far a
// migration progressed.
package report
