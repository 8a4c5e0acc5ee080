// Package regions manages the set of regions shown by the tool and the
// order in which they are listed.
package regions

import (
	"slices"
	"sort"
	"strings"
)

// DefaultRegions is used until a region set has been saved
var DefaultRegions = Set{"us-east-1", "us-east-2", "us-west-1", "us-west-2"}

// Set is an ordered list of unique region identifiers
type Set []string

// Parse splits a comma-joined region list into a Set
func Parse(s string) Set {
	return Normalize(strings.Split(s, ","))
}

// Normalize trims entries, drops empty ones and removes duplicates while
// keeping the first occurrence order.
func Normalize(regions []string) Set {
	set := make(Set, 0, len(regions))
	for _, r := range regions {
		r = strings.TrimSpace(r)
		if r == "" || slices.Contains(set, r) {
			continue
		}
		set = append(set, r)
	}
	return set
}

// String returns the comma-joined form used for persistence
func (s Set) String() string {
	return strings.Join(s, ",")
}

// Contains reports whether region is part of the set
func (s Set) Contains(region string) bool {
	return slices.Contains(s, region)
}

// Remove returns the set without region and whether it was present
func (s Set) Remove(region string) (Set, bool) {
	i := slices.Index(s, region)
	if i < 0 {
		return s, false
	}
	return slices.Delete(slices.Clone(s), i, i+1), true
}

// geographyOrder lists region prefixes in display priority
var geographyOrder = []string{"us-east", "us-west", "us", "ca", "eu", "sa", "ap"}

// sortIndex ranks a region by geography: "us-east-1" matches "us-east",
// "us-gov-west-1" falls back to "us", unknown prefixes sort last.
func sortIndex(region string) int {
	parts := strings.Split(region, "-")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}

	if i := slices.Index(geographyOrder, strings.Join(parts, "-")); i >= 0 {
		return i
	}
	if i := slices.Index(geographyOrder, parts[0]); i >= 0 {
		return i
	}
	return len(geographyOrder)
}

// Sort orders regions by geography, then alphabetically
func Sort(regions []string) []string {
	sorted := slices.Clone(regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sortIndex(sorted[i]), sortIndex(sorted[j])
		if a != b {
			return a < b
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}
