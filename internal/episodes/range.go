package episodes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"podboost/internal/services"
)

// ParseRange expands an episode range expression into a sorted, deduplicated
// list of episode numbers. Accepted forms are single numbers ("5"), spans
// ("1-10"), and comma-separated mixes of both ("1-5,10,15-20").
func ParseRange(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, services.Wrap(services.ErrValidation, "episodes", "parse range", "range expression is empty", nil)
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, rangeError(spec, "empty segment")
		}
		lo, hi, err := parseSegment(part)
		if err != nil {
			return nil, rangeError(spec, err.Error())
		}
		for nr := lo; nr <= hi; nr++ {
			seen[nr] = struct{}{}
		}
	}

	numbers := make([]int, 0, len(seen))
	for nr := range seen {
		numbers = append(numbers, nr)
	}
	sort.Ints(numbers)
	return numbers, nil
}

func parseSegment(segment string) (int, int, error) {
	if lo, hi, ok := strings.Cut(segment, "-"); ok {
		start, err := parseNumber(lo)
		if err != nil {
			return 0, 0, err
		}
		end, err := parseNumber(hi)
		if err != nil {
			return 0, 0, err
		}
		if end < start {
			return 0, 0, fmt.Errorf("span %q runs backwards", segment)
		}
		return start, end, nil
	}
	nr, err := parseNumber(segment)
	if err != nil {
		return 0, 0, err
	}
	return nr, nr, nil
}

func parseNumber(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	nr, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an episode number", raw)
	}
	if nr <= 0 {
		return 0, fmt.Errorf("episode numbers start at 1, got %d", nr)
	}
	return nr, nil
}

func rangeError(spec, detail string) error {
	return services.Wrap(services.ErrValidation, "episodes", "parse range", fmt.Sprintf("invalid range %q: %s", spec, detail), nil)
}
