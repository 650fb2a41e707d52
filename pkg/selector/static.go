// Package selector implements the ways a user picks search results to import.
package selector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dtnitsch/cinii-translator/pkg/results"
)

// Static selects results by 1-based position, e.g. "1,3,5-7". Order follows
// the expression; repeated positions are selected once.
type Static struct {
	Expr string
}

// All selects every result in listing order.
type All struct{}

func (All) SelectItems(ctx context.Context, set *results.Set) ([]string, error) {
	return set.URLs(), nil
}

func (s Static) SelectItems(ctx context.Context, set *results.Set) ([]string, error) {
	positions, err := ParsePositions(s.Expr, set.Len())
	if err != nil {
		return nil, err
	}
	urls := set.URLs()
	selected := make([]string, 0, len(positions))
	for _, p := range positions {
		selected = append(selected, urls[p-1])
	}
	return selected, nil
}

// ParsePositions parses a comma separated list of positions and ranges,
// each within 1..n.
func ParsePositions(expr string, n int) ([]int, error) {
	var positions []int
	seen := make(map[int]bool)
	add := func(p int) error {
		if p < 1 || p > n {
			return fmt.Errorf("position %d out of range 1-%d", p, n)
		}
		if !seen[p] {
			seen[p] = true
			positions = append(positions, p)
		}
		return nil
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid range %q", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, fmt.Errorf("invalid range %q", part)
			}
			for p := start; p <= end; p++ {
				if err := add(p); err != nil {
					return nil, err
				}
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid position %q", part)
		}
		if err := add(p); err != nil {
			return nil, err
		}
	}
	return positions, nil
}
