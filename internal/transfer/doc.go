// Package transfer moves repository content between instances by mirroring
// git and git-lfs data through a local staging directory.
package transfer
