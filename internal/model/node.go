package model

// Dir is a directory as seen by the enumerator
type Dir struct {
	Name string
	Path string
}

// File is a regular file as seen by the enumerator
type File struct {
	Name string
	Size int64 // size in bytes
	Path string
}

// MissingEntry is a file present under the master root with no qualifying
// counterpart at the mirrored location under the other root.
type MissingEntry struct {
	SourcePath string
	TargetPath string // where the file would live in the other tree
	Size       int64
}
