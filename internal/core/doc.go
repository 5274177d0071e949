// Package core holds the small set of abstractions shared by every venvsync
// package: the context-aware FileSystem used for all disk access, its OS and
// in-memory implementations, and the permission constants used when writing
// settings and state files.
package core
