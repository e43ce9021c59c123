// Package execshell provides structured helpers for invoking git and git-lfs.
//
// It wraps os/exec with logging and lifecycle notifications via ShellExecutor,
// exposes OSCommandRunner for default process execution, and defines the
// abstractions albatross uses to replicate repositories in a testable manner.
package execshell
