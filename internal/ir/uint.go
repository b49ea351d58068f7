package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Uint encodes an unsigned counter value. IRInt is signed, so counters are
// carried as base-10 strings to keep the full uint64 range.
func Uint(n uint64) IRString {
	return IRString(strconv.FormatUint(n, 10))
}

// ParseUint decodes a counter value written by Uint. A non-negative IRInt is
// accepted too, since scenario files usually write small numbers bare.
func ParseUint(v IRValue) (uint64, error) {
	switch val := v.(type) {
	case IRString:
		s := strings.TrimSpace(string(val))
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid unsigned value %q: %w", s, err)
		}
		return n, nil
	case IRInt:
		if val < 0 {
			return 0, fmt.Errorf("negative value %d is not unsigned", val)
		}
		return uint64(val), nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("expected unsigned integer, got %T", v)
	}
}
