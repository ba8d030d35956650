// Package repo ties the configured stores together and implements the repo
// level operations: adding sources, saving, pruning, signing.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"repoman/internal/config"
	"repoman/internal/download"
	"repoman/internal/sign"
	"repoman/internal/source"
	"repoman/internal/store"
	"repoman/internal/store/generic"
	"repoman/internal/store/rpm"
)

// Repo is a repository directory managed through a set of stores.
type Repo struct {
	path     string
	cfg      *config.Config
	stores   []store.Store
	expander *source.Expander
	signer   *sign.Signer
	tempDir  string
	ownsTemp bool
}

// New opens (or prepares) the repo at the configured path, loading the
// artifacts already present in it.
func New(cfg *config.Config) (*Repo, error) {
	path := strings.TrimSuffix(cfg.RepoPath, "/")
	if path == "" {
		return nil, fmt.Errorf("no repo path given")
	}

	tempDir, ownsTemp, err := cfg.EnsureTempDir()
	if err != nil {
		return nil, err
	}

	downloader := download.NewClient(download.Options{
		Retries:      cfg.DownloadRetries,
		VerifySSL:    cfg.VerifySSL,
		ShowProgress: true,
	})

	r := &Repo{
		path:     path,
		cfg:      cfg,
		expander: source.NewExpander(downloader, tempDir),
		tempDir:  tempDir,
		ownsTemp: ownsTemp,
	}
	if err := r.loadStores(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) loadStores() error {
	r.stores = nil
	for _, name := range r.cfg.Stores {
		switch name {
		case rpm.StoreName:
			rpmStore, err := rpm.NewStore(r.path, rpm.Options{
				ExtraDistros: r.cfg.ExtraDistros,
			})
			if err != nil {
				return err
			}
			r.stores = append(r.stores, rpmStore)
		case generic.StoreName:
			genStore, err := generic.NewStore(r.path)
			if err != nil {
				return err
			}
			r.stores = append(r.stores, genStore)
		default:
			return fmt.Errorf("unknown store %q", name)
		}
	}
	return nil
}

// Path returns the repo root directory.
func (r *Repo) Path() string { return r.path }

// Stores returns the loaded stores in routing order.
func (r *Repo) Stores() []store.Store { return r.stores }

// Close removes the temp dir when the repo owns it.
func (r *Repo) Close() {
	if r.ownsTemp {
		os.RemoveAll(r.tempDir)
	}
}

// AddSources expands the given source specs and routes every resolved
// artifact to the first store that handles it. A repo-suffix directive
// rebases the repo onto path_suffix before anything is added.
func (r *Repo) AddSources(specs []string) error {
	result, err := r.expander.Expand(specs)
	if err != nil {
		return err
	}
	if result.RepoSuffix != "" {
		if err := r.rebase(r.path + "_" + result.RepoSuffix); err != nil {
			return err
		}
	}
	for _, path := range result.Paths {
		if err := r.add(path); err != nil {
			return err
		}
	}
	return nil
}

// rebase reopens the repo at a different root, reloading the stores.
func (r *Repo) rebase(path string) error {
	r.path = path
	return r.loadStores()
}

func (r *Repo) add(path string) error {
	for _, s := range r.stores {
		if s.Handles(path) {
			return s.Add(path, r.cfg.Flags.OnlyIfNewer)
		}
	}
	return fmt.Errorf("no store handles artifact %s", path)
}

// Save writes every store's artifacts into the repo layout. When the config
// asks for sources, the src tree is generated too, and signed when a signing
// key is configured.
func (r *Repo) Save() error {
	for _, s := range r.stores {
		if err := s.Save(r.cfg.Noop); err != nil {
			return err
		}
	}
	if !r.cfg.WithSources || r.cfg.Noop {
		return nil
	}
	for _, s := range r.stores {
		gen, ok := s.(store.SourceGenerator)
		if !ok {
			continue
		}
		if err := gen.GenerateSources(r.cfg.Flags.WithPatches); err != nil {
			return err
		}
	}
	if r.cfg.SigningKey == "" {
		return nil
	}
	signer, err := r.Signer()
	if err != nil {
		return err
	}
	srcDir := filepath.Join(r.path, "src")
	if _, err := os.Stat(srcDir); err != nil {
		return nil
	}
	return signer.SignTree(srcDir)
}

// DeleteOld prunes all but the newest keep versions from every store,
// returning the removed paths.
func (r *Repo) DeleteOld(keep int) ([]string, error) {
	var removed []string
	for _, s := range r.stores {
		paths, err := s.DeleteOld(keep, r.cfg.Noop)
		if err != nil {
			return removed, err
		}
		removed = append(removed, paths...)
	}
	return removed, nil
}

// CreateRepos refreshes the package repository metadata of every store that
// maintains one.
func (r *Repo) CreateRepos(ctx context.Context) error {
	for _, s := range r.stores {
		creator, ok := s.(store.RepoCreator)
		if !ok {
			continue
		}
		if err := creator.CreateRepos(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SignRPMs resigns every rpm in the repo with the configured key.
func (r *Repo) SignRPMs(ctx context.Context) error {
	signer, err := r.Signer()
	if err != nil {
		return err
	}
	uid, err := signer.KeyUID()
	if err != nil {
		return err
	}
	for _, s := range r.stores {
		rpmStore, ok := s.(*rpm.Store)
		if !ok {
			continue
		}
		if err := rpmStore.SignRPMs(ctx, uid); err != nil {
			return err
		}
	}
	return nil
}

// GenerateSources populates the src tree from the source rpms in the repo.
func (r *Repo) GenerateSources(withPatches bool) error {
	for _, s := range r.stores {
		gen, ok := s.(store.SourceGenerator)
		if !ok {
			continue
		}
		if err := gen.GenerateSources(withPatches); err != nil {
			return err
		}
	}
	return nil
}

// Signer returns the signer for the configured signing key, creating it on
// first use.
func (r *Repo) Signer() (*sign.Signer, error) {
	if r.signer != nil {
		return r.signer, nil
	}
	if r.cfg.SigningKey == "" {
		return nil, fmt.Errorf("no signing key configured")
	}
	signer, err := sign.NewSigner(r.cfg.SigningKey, r.cfg.SigningPassphrase)
	if err != nil {
		return nil, err
	}
	r.signer = signer
	return signer, nil
}
