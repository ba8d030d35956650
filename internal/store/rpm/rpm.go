package rpm

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"repoman/internal/artifact"
)

// DefaultDistroPattern matches the distribution tag inside an rpm release
// string (".el7", ".fc24", ...).
const DefaultDistroPattern = `\.(fc|el)\d+`

// DefaultAllDistroPatterns are package name patterns whose rpms go to every
// distribution regardless of their release string.
var DefaultAllDistroPatterns = []string{
	`ovirt-release\d*`,
	`ovirt-guest-agent-windows`,
	`ovirt-guest-tools`,
	`py2exe.*`,
	`python-windows.*`,
	`pywin32.*`,
	`spice-qxl.*`,
	`vcredist-x86.*`,
	`nsis-simple-service-plugin.*`,
	`ovirt-node-ng-image-update-placeholder.*`,
}

// AllDistros is the distro value for packages that go to every distribution.
const AllDistros = "all"

// WrongDistroError is returned when a release string carries no recognizable
// distribution tag.
type WrongDistroError struct {
	Release string
}

func (e *WrongDistroError) Error() string {
	return fmt.Sprintf("unknown distro for release %q", e.Release)
}

// RPM is one rpm file, with its metadata parsed from the
// name-version-release.arch.rpm file name.
type RPM struct {
	path     string
	inode    uint64
	pkgName  string
	version  string
	release  string
	distro   string
	arch     string
	isSource bool
	verRel   string
}

// Parser turns rpm file paths into RPM artifacts.
type Parser struct {
	distroReg     *regexp.Regexp
	allDistroRegs []*regexp.Regexp
}

// NewParser creates a Parser. Empty arguments select the default distro
// pattern and all-distro name patterns.
func NewParser(distroPattern string, allDistroPatterns []string) (*Parser, error) {
	if distroPattern == "" {
		distroPattern = DefaultDistroPattern
	}
	if allDistroPatterns == nil {
		allDistroPatterns = DefaultAllDistroPatterns
	}
	distroReg, err := regexp.Compile(distroPattern)
	if err != nil {
		return nil, fmt.Errorf("bad distro pattern %q: %w", distroPattern, err)
	}
	p := &Parser{distroReg: distroReg}
	for _, pattern := range allDistroPatterns {
		reg, err := regexp.Compile("^" + pattern)
		if err != nil {
			return nil, fmt.Errorf("bad all-distro pattern %q: %w", pattern, err)
		}
		p.allDistroRegs = append(p.allDistroRegs, reg)
	}
	return p, nil
}

// Parse builds an RPM from a local rpm file path.
func (p *Parser) Parse(path string) (*RPM, error) {
	pkgName, version, release, arch, err := splitNVRA(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	inode, err := artifact.FileInode(path)
	if err != nil {
		return nil, err
	}

	r := &RPM{
		path:     path,
		inode:    inode,
		pkgName:  pkgName,
		version:  version,
		release:  release,
		arch:     arch,
		isSource: arch == "src",
	}

	if p.toAllDistros(pkgName) {
		r.distro = AllDistros
	} else {
		distro, err := extractDistro(release, p.distroReg)
		if err != nil {
			return nil, fmt.Errorf("package %s-%s: %w", pkgName, version, err)
		}
		r.distro = distro
	}

	// The distro tag is stripped from the release for the version string, so
	// the same build for two distros compares equal.
	r.verRel = version + "-" + stripDistro(release, r.distro)
	return r, nil
}

func (p *Parser) toAllDistros(pkgName string) bool {
	for _, reg := range p.allDistroRegs {
		if reg.MatchString(pkgName) {
			return true
		}
	}
	return false
}

// splitNVRA splits a file name of the form name-version-release.arch.rpm.
func splitNVRA(base string) (name, version, release, arch string, err error) {
	if !strings.HasSuffix(base, ".rpm") {
		return "", "", "", "", fmt.Errorf("%s is not an rpm file name", base)
	}
	rest := strings.TrimSuffix(base, ".rpm")

	archIdx := strings.LastIndex(rest, ".")
	if archIdx < 0 {
		return "", "", "", "", fmt.Errorf("no arch in rpm file name %s", base)
	}
	arch = rest[archIdx+1:]
	rest = rest[:archIdx]

	relIdx := strings.LastIndex(rest, "-")
	if relIdx < 0 {
		return "", "", "", "", fmt.Errorf("no release in rpm file name %s", base)
	}
	release = rest[relIdx+1:]
	rest = rest[:relIdx]

	verIdx := strings.LastIndex(rest, "-")
	if verIdx < 0 {
		return "", "", "", "", fmt.Errorf("no version in rpm file name %s", base)
	}
	version = rest[verIdx+1:]
	name = rest[:verIdx]
	if name == "" || version == "" || release == "" || arch == "" {
		return "", "", "", "", fmt.Errorf("malformed rpm file name %s", base)
	}
	return name, version, release, arch, nil
}

func extractDistro(release string, distroReg *regexp.Regexp) (string, error) {
	match := distroReg.FindString(release)
	if match == "" {
		return "", &WrongDistroError{Release: release}
	}
	return match[1:], nil
}

// stripDistro removes the distro tag (and anything glued to it up to the next
// dot) from a release string: "1.el7.centos" becomes "1.centos".
func stripDistro(release, distro string) string {
	if distro == "" || distro == AllDistros {
		return release
	}
	reg := regexp.MustCompile(`\.` + regexp.QuoteMeta(distro) + `[^.]*`)
	loc := reg.FindStringIndex(release)
	if loc == nil {
		return release
	}
	return release[:loc[0]] + release[loc[1]:]
}

// Name identifies the rpm entity: package name qualified by distro and arch.
func (r *RPM) Name() string { return r.pkgName + "." + r.distro + "." + r.arch }

// Version is the version-release string with the distro tag stripped.
func (r *RPM) Version() string { return r.verRel }

// Extension reports the file extension.
func (r *RPM) Extension() string {
	if r.isSource {
		return ".src.rpm"
	}
	return ".rpm"
}

// Type reports the artifact type tag.
func (r *RPM) Type() string {
	if r.isSource {
		return "source_rpm"
	}
	return "rpm"
}

// Path is the current on-disk location.
func (r *RPM) Path() string { return r.path }

// Inode is the file inode.
func (r *RPM) Inode() uint64 { return r.inode }

// PackageName is the bare package name without distro or arch qualifiers.
func (r *RPM) PackageName() string { return r.pkgName }

// Distro is the distribution this rpm belongs to, or "all".
func (r *RPM) Distro() string { return r.distro }

// Arch is the package architecture ("src" for source rpms).
func (r *RPM) Arch() string { return r.arch }

// IsSource reports whether this is a source rpm.
func (r *RPM) IsSource() bool { return r.isSource }

// GeneratePath returns the path the rpm should live at inside the repo for
// the given distro, relative to the repo root:
//
//	rpm/$distro/$arch/$name-$version-$release.$arch.rpm
//
// Source rpms go under SRPMS.
func (r *RPM) GeneratePath(distro string) string {
	archDir := r.arch
	if r.isSource {
		archDir = "SRPMS"
	}
	return filepath.Join(
		"rpm", distro, archDir,
		fmt.Sprintf("%s-%s-%s.%s.rpm", r.pkgName, r.version, r.release, r.arch),
	)
}

func (r *RPM) String() string {
	kind := "bin"
	if r.isSource {
		kind = "src"
	}
	return fmt.Sprintf("rpm(%s %s %s %s %s)", r.Name(), r.version, r.release, r.arch, kind)
}
