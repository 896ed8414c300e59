// Package version parses manifest schema versions and plugin versions.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// CurrentSchema is the schema version written into new manifests.
const CurrentSchema = "3.0"

// SchemaVersion represents a parsed "major.minor" manifest schema version,
// as found in <?eclipse version="3.0"?>.
type SchemaVersion struct {
	Major uint16
	Minor uint16
}

// ParseSchema parses a "major.minor" schema version string.
func ParseSchema(s string) (SchemaVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return SchemaVersion{}, fmt.Errorf("invalid schema version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return SchemaVersion{}, fmt.Errorf("invalid schema version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return SchemaVersion{}, fmt.Errorf("invalid schema version %q: bad minor component", s)
	}

	return SchemaVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v SchemaVersion) Compatible(other SchemaVersion) bool {
	return v.Major == other.Major
}

// AtLeast reports whether v is the same as or newer than other.
func (v SchemaVersion) AtLeast(other SchemaVersion) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

// Version is a plugin version: major[.minor[.micro[.qualifier]]].
// Missing numeric components are zero.
type Version struct {
	Major     uint32
	Minor     uint32
	Micro     uint32
	Qualifier string
}

// Parse parses a plugin version string.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, fmt.Errorf("invalid version %q: empty", s)
	}

	parts := strings.SplitN(s, ".", 4)
	var nums [3]uint32
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil || parts[i] == "" {
			return Version{}, fmt.Errorf("invalid version %q: bad component %d", s, i+1)
		}
		nums[i] = uint32(n)
	}

	v := Version{Major: nums[0], Minor: nums[1], Micro: nums[2]}
	if len(parts) == 4 {
		if !validQualifier(parts[3]) {
			return Version{}, fmt.Errorf("invalid version %q: bad qualifier", s)
		}
		v.Qualifier = parts[3]
	}
	return v, nil
}

func validQualifier(q string) bool {
	if q == "" {
		return false
	}
	for _, c := range q {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// String returns the canonical form major.minor.micro[.qualifier].
func (v Version) String() string {
	if v.Qualifier == "" {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
	}
	return fmt.Sprintf("%d.%d.%d.%s", v.Major, v.Minor, v.Micro, v.Qualifier)
}

// Compare returns -1, 0 or 1. Qualifiers compare as strings.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmpUint(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpUint(v.Minor, other.Minor)
	case v.Micro != other.Micro:
		return cmpUint(v.Micro, other.Micro)
	}
	return strings.Compare(v.Qualifier, other.Qualifier)
}

func cmpUint(a, b uint32) int {
	if a < b {
		return -1
	}
	return 1
}
