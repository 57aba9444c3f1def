// Package statefile stores state documents as JSON files in a directory.
// Writes are atomic (temp file plus rename) and serialized across processes
// with an advisory file lock.
package statefile
