package exchange

import (
	"fmt"
	"strconv"
	"time"
)

// ParseTimeframe converts a venue interval such as "3m", "4h" or "1d" into a duration.
// Months ("M") are approximated as 30 days.
func ParseTimeframe(tf string) (time.Duration, error) {
	if len(tf) < 2 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
	unit := tf[len(tf)-1:]
	value, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid timeframe value %q", tf)
	}
	n := time.Duration(value)
	switch unit {
	case "s":
		return n * time.Second, nil
	case "m":
		return n * time.Minute, nil
	case "h":
		return n * time.Hour, nil
	case "d":
		return n * 24 * time.Hour, nil
	case "w":
		return n * 7 * 24 * time.Hour, nil
	case "M":
		return n * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe unit %q", tf)
	}
}
