package artifact

import (
	"fmt"
	"os"
	"regexp"
)

// Filter selects artifacts out of a List.
type Filter struct {
	// Regexp filters by artifact path when set.
	Regexp *regexp.Regexp
	// Match filters with an arbitrary predicate when set.
	Match func(Artifact) bool
	// Latest limits results to the newest N versions per name (0 for all).
	Latest int
}

func (f Filter) accepts(a Artifact) bool {
	if f.Regexp != nil && !f.Regexp.MatchString(a.Path()) {
		return false
	}
	if f.Match != nil && !f.Match(a) {
		return false
	}
	return true
}

// Inode groups the instances of one artifact file: every path that shares the
// inode points at the same content.
type Inode struct {
	ID        uint64
	Artifacts []Artifact
}

// NewInode creates an empty Inode for the given inode number.
func NewInode(id uint64) *Inode {
	return &Inode{ID: id}
}

// Add appends an artifact instance to this inode.
func (n *Inode) Add(a Artifact) {
	n.Artifacts = append(n.Artifacts, a)
}

// Get returns the artifacts of this inode that pass the filter.
func (n *Inode) Get(f Filter) []Artifact {
	var arts []Artifact
	for _, a := range n.Artifacts {
		if f.accepts(a) {
			arts = append(arts, a)
		}
	}
	return arts
}

// Delete removes the files of this inode from disk. With noop set it only
// reports what it would remove.
func (n *Inode) Delete(noop bool, report func(path string)) error {
	for _, a := range n.Artifacts {
		if noop {
			if report != nil {
				report(a.Path())
			}
			continue
		}
		if _, err := os.Stat(a.Path()); err != nil {
			continue
		}
		if err := os.Remove(a.Path()); err != nil {
			return fmt.Errorf("remove %s: %w", a.Path(), err)
		}
		if report != nil {
			report(a.Path())
		}
	}
	return nil
}

// Version is the set of artifact inodes for one version of a name.
type Version struct {
	Version string
	Inodes  map[uint64]*Inode
}

// NewVersion creates an empty Version.
func NewVersion(version string) *Version {
	return &Version{Version: version, Inodes: make(map[uint64]*Inode)}
}

// Add stores an artifact under its inode.
func (v *Version) Add(a Artifact) {
	inode, ok := v.Inodes[a.Inode()]
	if !ok {
		inode = NewInode(a.Inode())
		v.Inodes[a.Inode()] = inode
	}
	inode.Add(a)
}

// Get returns the artifacts of this version that pass the filter.
func (v *Version) Get(f Filter) []Artifact {
	var arts []Artifact
	for _, inode := range v.Inodes {
		arts = append(arts, inode.Get(f)...)
	}
	return arts
}

// Delete removes all inodes of this version from disk.
func (v *Version) Delete(noop bool, report func(path string)) error {
	for id, inode := range v.Inodes {
		if err := inode.Delete(noop, report); err != nil {
			return err
		}
		if !noop {
			delete(v.Inodes, id)
		}
	}
	return nil
}

// Name is the set of available versions for one artifact name.
type Name struct {
	Name     string
	Versions map[string]*Version
}

// NewName creates an empty Name.
func NewName(name string) *Name {
	return &Name{Name: name, Versions: make(map[string]*Version)}
}

// Add stores the artifact under its version. With onlyIfNewer set it refuses
// the artifact when the same or a newer version is already present, and
// reports whether the artifact was added.
func (n *Name) Add(a Artifact, onlyIfNewer bool) bool {
	if onlyIfNewer {
		for ver := range n.Versions {
			if CompareFullVersions(ver, a.Version()) >= 0 {
				return false
			}
		}
	}
	version, ok := n.Versions[a.Version()]
	if !ok {
		version = NewVersion(a.Version())
		n.Versions[a.Version()] = version
	}
	version.Add(a)
	return true
}

// Latest returns the newest num version strings, newest first. An accept
// predicate, when set, skips versions it rejects. num <= 0 returns all
// versions.
func (n *Name) Latest(num int, accept func(*Version) bool) []string {
	var versions []string
	for ver, version := range n.Versions {
		if accept != nil && !accept(version) {
			continue
		}
		versions = append(versions, ver)
	}
	versions = SortedVersions(versions)
	if num > 0 && num < len(versions) {
		versions = versions[:num]
	}
	return versions
}

// Get returns the artifacts of this name that pass the filter.
func (n *Name) Get(f Filter) []Artifact {
	var arts []Artifact
	if f.Latest > 0 {
		for _, ver := range n.Latest(f.Latest, nil) {
			arts = append(arts, n.Versions[ver].Get(f)...)
		}
		return arts
	}
	for _, version := range n.Versions {
		arts = append(arts, version.Get(f)...)
	}
	return arts
}

// DeleteVersion removes one version of this name from disk and from the list.
func (n *Name) DeleteVersion(ver string, noop bool, report func(path string)) error {
	version, ok := n.Versions[ver]
	if !ok {
		return nil
	}
	if err := version.Delete(noop, report); err != nil {
		return err
	}
	if !noop {
		delete(n.Versions, ver)
	}
	return nil
}

// List holds all the artifacts of one store, indexed by name.
type List struct {
	Names map[string]*Name
}

// NewList creates an empty List.
func NewList() *List {
	return &List{Names: make(map[string]*Name)}
}

// Add stores the artifact under its name and version, reporting whether it
// was added.
func (l *List) Add(a Artifact, onlyIfNewer bool) bool {
	name, ok := l.Names[a.Name()]
	if !ok {
		name = NewName(a.Name())
		l.Names[a.Name()] = name
	}
	return name.Add(a, onlyIfNewer)
}

// Get returns all the artifacts that pass the filter.
func (l *List) Get(f Filter) []Artifact {
	var arts []Artifact
	for _, name := range l.Names {
		arts = append(arts, name.Get(f)...)
	}
	return arts
}

// Len returns the number of artifact instances held.
func (l *List) Len() int {
	return len(l.Get(Filter{}))
}
