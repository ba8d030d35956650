package artifact

import (
	"fmt"
	"os"
	"syscall"
)

// Artifact is a single artifact file managed by a store.
type Artifact interface {
	// Name identifies the artifact entity (may embed distro/arch qualifiers).
	Name() string
	// Version is the full version string, in the form x.y.z-a.b.c.
	Version() string
	// Extension is the file extension, including the leading dot.
	Extension() string
	// Type is a short store-specific type tag (e.g. "rpm", "source_rpm").
	Type() string
	// Path is the current location of the artifact on disk.
	Path() string
	// Inode is the filesystem inode of the artifact file. Two paths with the
	// same inode are the same artifact.
	Inode() uint64
}

// FullName uniquely identifies an artifact entity: two artifacts with the same
// full name must package the same content, or one of them was wrongly
// generated (the version was not bumped).
func FullName(a Artifact) string {
	return fmt.Sprintf("%s(%s %s)", a.Type(), a.Name(), a.Version())
}

// FileInode returns the inode of the file at path.
func FileInode(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, fmt.Errorf("no inode information for %s", path)
	}
	return st.Ino, nil
}
