package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// parseIndices parses a comma-separated index list such as "1,2,5".
func parseIndices(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("no test indices given")
	}
	parts := strings.Split(s, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad test index %q: %w", part, err)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

// discoverIndices globs testsDir for family_<n>.rkt sources and returns
// their indices in ascending order.
func discoverIndices(testsDir, family string) ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(testsDir, family+"_*.rkt"))
	if err != nil {
		return nil, err
	}
	var indices []int
	prefix := family + "_"
	for _, match := range matches {
		base := strings.TrimSuffix(filepath.Base(match), ".rkt")
		n, err := strconv.Atoi(strings.TrimPrefix(base, prefix))
		if err != nil {
			continue // not family_<number>.rkt
		}
		indices = append(indices, n)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no tests found for family %q in %s", family, testsDir)
	}
	sort.Ints(indices)
	return indices, nil
}

// resolveIndices picks between an explicit index list and discovery.
func resolveIndices(testsDir, family, indices string, all bool) ([]int, error) {
	if all {
		return discoverIndices(testsDir, family)
	}
	return parseIndices(indices)
}
