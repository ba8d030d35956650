package rpm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"repoman/internal/artifact"
	"repoman/internal/fsutil"
)

// StoreName is the identifier of the rpm store in configuration.
const StoreName = "rpm"

// Options configures an rpm Store.
type Options struct {
	// DistroPattern overrides the release distro tag pattern.
	DistroPattern string
	// AllDistroPatterns overrides the package names that go to all distros.
	AllDistroPatterns []string
	// ExtraDistros are distros always present in the repo, even when no
	// distro-tagged rpm was added for them.
	ExtraDistros []string
}

// Store manages the rpm tree of a repo:
//
//	$repo/rpm/$distro/$arch/*.rpm
//	$repo/rpm/$distro/SRPMS/*.src.rpm
//	$repo/src/$name/...
type Store struct {
	repoPath  string
	parser    *Parser
	artifacts *artifact.List
	distros   map[string]struct{}
	known     map[string]struct{}
}

// NewStore creates a Store rooted at repoPath and loads the rpms already
// present in its tree.
func NewStore(repoPath string, opts Options) (*Store, error) {
	parser, err := NewParser(opts.DistroPattern, opts.AllDistroPatterns)
	if err != nil {
		return nil, err
	}
	s := &Store{
		repoPath:  repoPath,
		parser:    parser,
		artifacts: artifact.NewList(),
		distros:   make(map[string]struct{}),
		known:     make(map[string]struct{}),
	}
	for _, distro := range opts.ExtraDistros {
		s.distros[distro] = struct{}{}
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rpmDir := filepath.Join(s.repoPath, "rpm")
	if _, err := os.Stat(rpmDir); err != nil {
		return nil
	}
	paths, err := fsutil.ListFiles(rpmDir, ".rpm")
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := s.Add(path, false); err != nil {
			return fmt.Errorf("loading repo: %w", err)
		}
	}
	return nil
}

// Name returns the store identifier.
func (s *Store) Name() string { return StoreName }

// Handles reports whether path looks like an rpm file.
func (s *Store) Handles(path string) bool {
	return strings.HasSuffix(path, ".rpm")
}

// Add parses and registers an rpm file. Paths seen before are skipped. With
// onlyIfNewer set the rpm is dropped when the same or a newer version of its
// name is already registered.
func (s *Store) Add(path string, onlyIfNewer bool) error {
	if _, ok := s.known[path]; ok {
		return nil
	}
	r, err := s.parser.Parse(path)
	if err != nil {
		return err
	}
	if !s.artifacts.Add(r, onlyIfNewer) {
		return nil
	}
	s.known[path] = struct{}{}
	if r.Distro() != AllDistros {
		s.distros[r.Distro()] = struct{}{}
	}
	return nil
}

// Artifacts exposes the store contents.
func (s *Store) Artifacts() *artifact.List { return s.artifacts }

// Distros returns the distros known to this store, sorted.
func (s *Store) Distros() []string {
	distros := make([]string, 0, len(s.distros))
	for distro := range s.distros {
		distros = append(distros, distro)
	}
	sort.Strings(distros)
	return distros
}

// Save hardlinks (or copies) every registered rpm into its place in the repo
// tree. Packages for all distros are expanded to every known distro. Existing
// destinations are left alone, so re-saving is cheap and idempotent.
func (s *Store) Save(noop bool) error {
	for _, a := range s.artifacts.Get(artifact.Filter{}) {
		r := a.(*RPM)
		for _, distro := range s.targetDistros(r) {
			dst := filepath.Join(s.repoPath, r.GeneratePath(distro))
			if noop {
				fmt.Printf("NOOP::would save %s\n", dst)
				continue
			}
			if err := fsutil.SaveFile(r.Path(), dst); err != nil {
				return fmt.Errorf("saving %s: %w", r, err)
			}
			// Register the repo copy, so pruning removes it along with the
			// original instance.
			if err := s.Add(dst, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) targetDistros(r *RPM) []string {
	if r.Distro() != AllDistros {
		return []string{r.Distro()}
	}
	return s.Distros()
}

// DeleteOld removes all but the newest keep versions of every rpm name,
// returning the removed paths. Versions are ranked by the binary packages
// they hold; names with only source packages rank all their versions.
func (s *Store) DeleteOld(keep int, noop bool) ([]string, error) {
	if keep <= 0 {
		return nil, fmt.Errorf("keep must be > 0, got %d", keep)
	}
	var removed []string
	for _, name := range s.artifacts.Names {
		hasBinaries := len(name.Get(artifact.Filter{Match: notSource})) > 0
		accept := func(v *artifact.Version) bool {
			if !hasBinaries {
				return true
			}
			return len(v.Get(artifact.Filter{Match: notSource})) > 0
		}
		kept := make(map[string]struct{})
		for _, ver := range name.Latest(keep, accept) {
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

func notSource(a artifact.Artifact) bool {
	r, ok := a.(*RPM)
	return !ok || !r.IsSource()
}

// CreateRepos runs createrepo on each distro directory of the rpm tree.
func (s *Store) CreateRepos(ctx context.Context) error {
	for _, distro := range s.Distros() {
		dir := filepath.Join(s.repoPath, "rpm", distro)
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, "createrepo", dir)
		output, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("createrepo %s: %w\n%s", dir, err, output)
		}
	}
	return nil
}

// SignRPMs resigns every rpm in the store with the given gpg key uid via
// rpmsign. The key must be usable without interaction (gpg-agent).
func (s *Store) SignRPMs(ctx context.Context, keyUID string) error {
	for _, a := range s.artifacts.Get(artifact.Filter{}) {
		r := a.(*RPM)
		cmd := exec.CommandContext(ctx, "rpmsign",
			"--resign",
			"-D", "_signature gpg",
			"-D", "_gpg_name "+keyUID,
			r.Path(),
		)
		output, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("rpmsign %s: %w\n%s", r.Path(), err, output)
		}
	}
	return nil
}

// GenerateSources populates the src tree with the contents of the source
// rpms, extracted with rpm2cpio and cpio.
func (s *Store) GenerateSources(withPatches bool) error {
	sources := s.artifacts.Get(artifact.Filter{Match: func(a artifact.Artifact) bool {
		r, ok := a.(*RPM)
		return ok && r.IsSource()
	}})
	for _, a := range sources {
		r := a.(*RPM)
		dstDir := filepath.Join(s.repoPath, "src", r.PackageName())
		if err := extractSources(r.Path(), dstDir, withPatches); err != nil {
			return fmt.Errorf("generating sources for %s: %w", r, err)
		}
	}
	return nil
}

// extractSources unpacks the tarballs (and optionally patches) of a source
// rpm into dstDir.
func extractSources(rpmPath, dstDir string, withPatches bool) error {
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return err
	}
	absRPM, err := filepath.Abs(rpmPath)
	if err != nil {
		return err
	}

	rpm2cpio := exec.Command("rpm2cpio", absRPM)
	patterns := []string{"-ivd", "*gz", "*.zip", "*.7z", "*.xz"}
	if withPatches {
		patterns = append(patterns, "*.patch")
	}
	cpio := exec.Command("cpio", patterns...)
	cpio.Dir = dstDir

	pipe, err := rpm2cpio.StdoutPipe()
	if err != nil {
		return err
	}
	cpio.Stdin = pipe

	if err := rpm2cpio.Start(); err != nil {
		return fmt.Errorf("rpm2cpio: %w", err)
	}
	if err := cpio.Start(); err != nil {
		return fmt.Errorf("cpio: %w", err)
	}
	if err := rpm2cpio.Wait(); err != nil {
		return fmt.Errorf("rpm2cpio %s: %w", absRPM, err)
	}
	if err := cpio.Wait(); err != nil {
		return fmt.Errorf("cpio extract of %s: %w", absRPM, err)
	}
	return nil
}
