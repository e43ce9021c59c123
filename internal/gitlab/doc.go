// Package gitlab implements the REST v4 client used to read a source
// instance and write a destination instance during group replication.
package gitlab
