package osver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version represents a macOS version with major, minor, and patch components.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String returns the string representation of a Version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse converts a version string into a Version struct.
// Format should be "major.minor.patch" or "major.minor".
func Parse(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version format: %s", version)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version component %q in %s", p, version)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer
// than other.
func (v Version) Compare(other Version) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{other.Major, other.Minor, other.Patch}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// AtLeast returns true if this version is greater than or equal to the specified version.
func (v Version) AtLeast(other Version) bool {
	return v.Compare(other) >= 0
}

// IsAtLeast checks if the running system is macOS at least the specified
// version. It is always false on other systems.
func IsAtLeast(major, minor, patch int) bool {
	current, ok := Get()
	if !ok {
		return false
	}
	return current.AtLeast(Version{Major: major, Minor: minor, Patch: patch})
}
