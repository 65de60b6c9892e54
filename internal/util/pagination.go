package util

import "strconv"

const (
	DefaultTake = 10
	MaxTake     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// ClampSkipTake bounds a requested page window: skip is non-negative,
// take stays within 1..MaxTake.
func ClampSkipTake(skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take < 1 {
		take = DefaultTake
	}
	if take > MaxTake {
		take = MaxTake
	}
	return skip, take
}
