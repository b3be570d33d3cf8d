// Package filesystem is the read-only file access used by the report reader.
// OSFileSystem reads from disk; MemoryFileSystem serves fixtures in tests.
package filesystem
