// Package store reads the mounted configuration file on demand.
// There is no in-memory copy; each Read goes to disk.
package store
