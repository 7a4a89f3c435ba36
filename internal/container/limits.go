package container

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMemoryLimit converts a human memory limit ("2g", "1024m", "512k")
// to bytes.
func ParseMemoryLimit(memory string) (int64, error) {
	lower := strings.ToLower(memory)

	var multiplier int64
	switch {
	case strings.HasSuffix(lower, "g"):
		multiplier = 1 << 30
	case strings.HasSuffix(lower, "m"):
		multiplier = 1 << 20
	case strings.HasSuffix(lower, "k"):
		multiplier = 1 << 10
	default:
		return 0, fmt.Errorf("invalid memory format %q: use a value like 2g, 1024m, or 512k", memory)
	}

	number, err := strconv.ParseInt(lower[:len(lower)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory value %q: %w", memory, err)
	}
	return number * multiplier, nil
}

// ParseCPULimit converts a CPU count ("1.5", "2") to a Docker CFS
// quota/period pair with a 100ms period.
func ParseCPULimit(cpus string) (quota, period int64, err error) {
	value, err := strconv.ParseFloat(cpus, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cpu value %q: %w", cpus, err)
	}
	if value <= 0 {
		return 0, 0, fmt.Errorf("invalid cpu value %q: must be positive", cpus)
	}
	period = 100000
	quota = int64(value * float64(period))
	return quota, period, nil
}
