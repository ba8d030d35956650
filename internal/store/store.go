package store

import (
	"context"

	"repoman/internal/artifact"
)

// Store manages the artifacts of one kind inside a repo.
type Store interface {
	// Name is the store identifier used in configuration (e.g. "rpm").
	Name() string
	// Handles reports whether this store manages the given file.
	Handles(path string) bool
	// Add registers an artifact file with the store. The file is not moved
	// until Save is called. With onlyIfNewer set the artifact is skipped
	// when the same or a newer version of its name is already present.
	Add(path string, onlyIfNewer bool) error
	// Save relocates the registered artifacts into the repo layout. With noop
	// set it only reports what it would do.
	Save(noop bool) error
	// DeleteOld removes all but the newest keep versions of every artifact
	// name, returning the removed paths. With noop set nothing is removed.
	DeleteOld(keep int, noop bool) ([]string, error)
	// Artifacts exposes the store contents for listing and inspection.
	Artifacts() *artifact.List
}

// RepoCreator is implemented by stores that maintain package repository
// metadata (createrepo for RPM stores).
type RepoCreator interface {
	CreateRepos(ctx context.Context) error
}

// SourceGenerator is implemented by stores that can populate a source tree
// from their artifacts.
type SourceGenerator interface {
	GenerateSources(withPatches bool) error
}
