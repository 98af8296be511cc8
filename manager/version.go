/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package manager

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a normalized controller version used for capability gating.
// The zero value is the null version, which compares lower than any parsed
// version so that feature gates fail closed when the probe did not run.
type Version struct {
	Major int
	Minor int
	Patch int
	Build string
	valid bool
}

var numericRe = regexp.MustCompile(`\d.*\d`)

// ParseVersion normalizes a controller version string. Version strings in
// the wild carry prefixes and suffixes, for example "20.12.0-144-li" or
// "smart-li-20.13.999-3077"; the strategy is to strip down to the numeric
// core and retry, returning the null version when nothing parses.
func ParseVersion(s string) Version {
	for _, candidate := range []string{strings.TrimSpace(s), numericRe.FindString(s)} {
		if v, ok := parseExact(candidate); ok {
			return v
		}
	}
	return Version{}
}

func parseExact(s string) (Version, bool) {
	if s == "" {
		return Version{}, false
	}
	core, build, _ := strings.Cut(s, "-")
	parts := strings.Split(core, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, false
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Build: build, valid: true}, true
}

// IsNull reports whether the version is the null version.
func (v Version) IsNull() bool {
	return !v.valid
}

func (v Version) String() string {
	if v.IsNull() {
		return "NullVersion"
	}
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Build != "" {
		s += "-" + v.Build
	}
	return s
}

// Compare returns -1, 0 or 1 ordering v against o. Build suffixes do not
// participate in ordering. A null version is lower than everything except
// another null version.
func (v Version) Compare(o Version) int {
	if v.IsNull() || o.IsNull() {
		switch {
		case v.IsNull() && o.IsNull():
			return 0
		case v.IsNull():
			return -1
		default:
			return 1
		}
	}
	for _, d := range [][2]int{{v.Major, o.Major}, {v.Minor, o.Minor}, {v.Patch, o.Patch}} {
		if d[0] != d[1] {
			if d[0] < d[1] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is at least the given version string, for
// example AtLeast("20.6"). Malformed arguments gate closed.
func (v Version) AtLeast(s string) bool {
	min := ParseVersion(s)
	if min.IsNull() || v.IsNull() {
		return false
	}
	return v.Compare(min) >= 0
}
