package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstVersionLabel is the label given to the first version of a song
const FirstVersionLabel = "v1.0.0"

// ParseLabel splits a "vMAJOR.MINOR.PATCH" label. The leading "v" and the
// patch part are optional.
func ParseLabel(label string) (major, minor, patch int, ok bool) {
	s := strings.TrimPrefix(strings.TrimSpace(strings.ToLower(label)), "v")
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}

// NextVersionLabel bumps the minor number of the highest parseable label
// among versions. Unparseable labels are ignored.
func NextVersionLabel(versions []Version) string {
	found := false
	var maxMajor, maxMinor int
	for _, v := range versions {
		major, minor, _, ok := ParseLabel(v.Label)
		if !ok {
			continue
		}
		if !found || major > maxMajor || (major == maxMajor && minor > maxMinor) {
			maxMajor, maxMinor = major, minor
			found = true
		}
	}
	if !found {
		return FirstVersionLabel
	}
	return fmt.Sprintf("v%d.%d.0", maxMajor, maxMinor+1)
}
