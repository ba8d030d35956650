// Package generic implements the catch-all artifact store, with the layout
//
//	$repo/$name/$version/$name-$version$extension
//
// used for anything the more specific stores do not handle (isos, tarballs,
// images).
package generic

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"repoman/internal/artifact"
	"repoman/internal/fsutil"
)

// StoreName is the identifier of the generic store in configuration.
const StoreName = "generic"

// Artifact is a generic artifact file, named name-version.extension.
type Artifact struct {
	path    string
	inode   uint64
	name    string
	version string
	ext     string
}

// ParseArtifact builds an Artifact from a local file path.
func ParseArtifact(path string) (*Artifact, error) {
	name, version, ext, err := splitNameVersion(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	inode, err := artifact.FileInode(path)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		path:    path,
		inode:   inode,
		name:    name,
		version: version,
		ext:     ext,
	}, nil
}

// splitNameVersion splits a file name of the form name-version.extension. The
// version starts at the last dash followed by a digit and runs through the
// leading digit-started dot segments; the rest is the extension.
func splitNameVersion(base string) (name, version, ext string, err error) {
	verIdx := -1
	for i := len(base) - 2; i > 0; i-- {
		if base[i] == '-' && unicode.IsDigit(rune(base[i+1])) {
			verIdx = i
			break
		}
	}
	if verIdx <= 0 {
		return "", "", "", fmt.Errorf("no version in artifact file name %s", base)
	}
	name = base[:verIdx]
	rest := base[verIdx+1:]

	segments := strings.Split(rest, ".")
	split := len(segments)
	for i, seg := range segments {
		if i == 0 {
			continue
		}
		if seg == "" || !unicode.IsDigit(rune(seg[0])) {
			split = i
			break
		}
	}
	version = strings.Join(segments[:split], ".")
	if split < len(segments) {
		ext = "." + strings.Join(segments[split:], ".")
	}
	return name, version, ext, nil
}

// Name returns the artifact name.
func (a *Artifact) Name() string { return a.name }

// Version returns the artifact version.
func (a *Artifact) Version() string { return a.version }

// Extension returns the file extension, including the leading dot.
func (a *Artifact) Extension() string { return a.ext }

// Type returns the artifact type tag.
func (a *Artifact) Type() string { return "artifact" }

// Path returns the current on-disk location.
func (a *Artifact) Path() string { return a.path }

// Inode returns the file inode.
func (a *Artifact) Inode() uint64 { return a.inode }

// GeneratePath returns where the artifact should live relative to the repo
// root.
func (a *Artifact) GeneratePath() string {
	return filepath.Join(a.name, a.version, a.name+"-"+a.version+a.ext)
}

func (a *Artifact) String() string {
	return fmt.Sprintf("artifact(%s %s %s)", a.name, a.version, a.ext)
}

// Store manages generic artifacts inside a repo.
type Store struct {
	repoPath  string
	artifacts *artifact.List
	known     map[string]struct{}
}

// NewStore creates a Store rooted at repoPath and loads the artifacts already
// present in its tree.
func NewStore(repoPath string) (*Store, error) {
	s := &Store{
		repoPath:  repoPath,
		artifacts: artifact.NewList(),
		known:     make(map[string]struct{}),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load registers the parseable files already in the repo tree. The rpm and
// src trees belong to the rpm store and are left alone.
func (s *Store) load() error {
	if _, err := os.Stat(s.repoPath); err != nil {
		return nil
	}
	return filepath.WalkDir(s.repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filepath.Dir(path) == s.repoPath && (d.Name() == "rpm" || d.Name() == "src") {
				return fs.SkipDir
			}
			return nil
		}
		if !s.Handles(path) {
			return nil
		}
		if err := s.Add(path, false); err != nil {
			return fmt.Errorf("loading repo: %w", err)
		}
		return nil
	})
}

// Name returns the store identifier.
func (s *Store) Name() string { return StoreName }

// Handles accepts any file with a parseable name-version file name. The
// generic store goes last in the store list, so more specific stores get
// first pick.
func (s *Store) Handles(path string) bool {
	_, _, _, err := splitNameVersion(filepath.Base(path))
	return err == nil
}

// Add parses and registers an artifact file. Paths seen before are skipped.
// With onlyIfNewer set the artifact is dropped when the same or a newer
// version of its name is already registered.
func (s *Store) Add(path string, onlyIfNewer bool) error {
	if _, ok := s.known[path]; ok {
		return nil
	}
	a, err := ParseArtifact(path)
	if err != nil {
		return err
	}
	if !s.artifacts.Add(a, onlyIfNewer) {
		return nil
	}
	s.known[path] = struct{}{}
	return nil
}

// Artifacts exposes the store contents.
func (s *Store) Artifacts() *artifact.List { return s.artifacts }

// Save hardlinks (or copies) every registered artifact into its place.
func (s *Store) Save(noop bool) error {
	for _, art := range s.artifacts.Get(artifact.Filter{}) {
		a := art.(*Artifact)
		dst := filepath.Join(s.repoPath, a.GeneratePath())
		if noop {
			fmt.Printf("NOOP::would save %s\n", dst)
			continue
		}
		if err := fsutil.SaveFile(a.Path(), dst); err != nil {
			return fmt.Errorf("saving %s: %w", a, err)
		}
		// Register the repo copy, so pruning removes it along with the
		// original instance.
		if err := s.Add(dst, false); err != nil {
			return err
		}
	}
	return nil
}

// DeleteOld removes all but the newest keep versions of every artifact name,
// returning the removed paths.
func (s *Store) DeleteOld(keep int, noop bool) ([]string, error) {
	if keep <= 0 {
		return nil, fmt.Errorf("keep must be > 0, got %d", keep)
	}
	var removed []string
	for _, name := range s.artifacts.Names {
		kept := make(map[string]struct{})
		for _, ver := range name.Latest(keep, nil) {
			kept[ver] = struct{}{}
		}
		for ver := range name.Versions {
			if _, ok := kept[ver]; ok {
				continue
			}
			err := name.DeleteVersion(ver, noop, func(path string) {
				removed = append(removed, path)
			})
			if err != nil {
				return removed, err
			}
		}
	}
	return removed, nil
}
