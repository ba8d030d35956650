package artifact

import (
	"sort"
	"strconv"
	"strings"
)

// CompareVersions compares two version strings in the form x.y.z using
// natural sort ordering (what you usually expect when comparing versions
// yourself). Returns a negative number if a < b, zero if equal, positive if
// a > b.
func CompareVersions(a, b string) int {
	asegs := strings.Split(a, ".")
	bsegs := strings.Split(b, ".")

	for i := 0; i < len(asegs) && i < len(bsegs); i++ {
		if c := compareSegment(asegs[i], bsegs[i]); c != 0 {
			return c
		}
	}
	// Equal prefix: the longer version is the newer one.
	return len(asegs) - len(bsegs)
}

// CompareFullVersions compares version strings in the form x.y.z-a.b.c,
// comparing the version part first and the release part on ties.
func CompareFullVersions(a, b string) int {
	averc, arel := splitFullVersion(a)
	bverc, brel := splitFullVersion(b)
	if c := CompareVersions(averc, bverc); c != 0 {
		return c
	}
	return CompareVersions(arel, brel)
}

// SortedVersions returns the given full version strings sorted from newest to
// oldest.
func SortedVersions(versions []string) []string {
	sorted := make([]string, len(versions))
	copy(sorted, versions)
	sort.Slice(sorted, func(i, j int) bool {
		return CompareFullVersions(sorted[i], sorted[j]) > 0
	})
	return sorted
}

func splitFullVersion(full string) (version, release string) {
	parts := strings.SplitN(full, "-", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// compareSegment compares one dot-separated segment. Numeric segments compare
// numerically, non-numeric ones lexically. A numeric segment is newer than a
// non-numeric one, so timestamped releases sort after distro-tagged ones.
func compareSegment(a, b string) int {
	an, aIsNum := tryInt(a)
	bn, bIsNum := tryInt(b)
	switch {
	case aIsNum && bIsNum:
		return an - bn
	case aIsNum:
		return 1
	case bIsNum:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

func tryInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
