package common

import "slices"

// AppendUnique appends every non-empty value not already present, keeping order.
func AppendUnique(parts []string, values ...string) []string {
	for _, v := range values {
		if v == "" || slices.Contains(parts, v) {
			continue
		}
		parts = append(parts, v)
	}
	return parts
}
