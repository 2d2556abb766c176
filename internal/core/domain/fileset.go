package domain

import (
	"slices"
	"strings"
)

// FileSet is an immutable, sorted set of file paths.
type FileSet struct {
	paths []string
}

// NewFileSet builds a set from paths, collapsing duplicates.
func NewFileSet(paths ...string) FileSet {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	return FileSet{paths: slices.Compact(sorted)}
}

// Len returns the number of distinct paths.
func (s FileSet) Len() int {
	return len(s.paths)
}

// IsEmpty reports whether the set holds no paths.
func (s FileSet) IsEmpty() bool {
	return len(s.paths) == 0
}

// Contains reports whether path is a member of the set.
func (s FileSet) Contains(path string) bool {
	_, found := slices.BinarySearch(s.paths, path)
	return found
}

// Paths returns the members in sorted order.
func (s FileSet) Paths() []string {
	return slices.Clone(s.paths)
}

// Overlap returns the size of the intersection of s and other.
func (s FileSet) Overlap(other FileSet) int {
	n := 0
	i, j := 0, 0
	for i < len(s.paths) && j < len(other.paths) {
		switch c := strings.Compare(s.paths[i], other.paths[j]); {
		case c == 0:
			n++
			i++
			j++
		case c < 0:
			i++
		default:
			j++
		}
	}
	return n
}
