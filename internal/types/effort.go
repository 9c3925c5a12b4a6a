package types

import (
	"fmt"
	"strings"
)

// EffortTier buckets the estimated refactoring effort.
type EffortTier int

const (
	EffortLow EffortTier = iota
	EffortMedium
	EffortHigh
)

func (e EffortTier) String() string {
	switch e {
	case EffortLow:
		return "Low"
	case EffortMedium:
		return "Medium"
	case EffortHigh:
		return "High"
	default:
		return fmt.Sprintf("EffortTier(%d)", int(e))
	}
}

// Description is the fixed human-readable text attached to each tier.
func (e EffortTier) Description() string {
	switch e {
	case EffortLow:
		return "Low - a few focused modules with little shared code"
	case EffortMedium:
		return "Medium - several modules, some coordination between them required"
	case EffortHigh:
		return "High - many modules or heavy duplication, plan the split in stages"
	default:
		return ""
	}
}

// ParseEffortTier is the inverse of String, case-insensitive.
func ParseEffortTier(s string) (EffortTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return EffortLow, nil
	case "medium":
		return EffortMedium, nil
	case "high":
		return EffortHigh, nil
	}
	return 0, fmt.Errorf("unknown effort tier %q", s)
}

func (e EffortTier) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *EffortTier) UnmarshalText(b []byte) error {
	v, err := ParseEffortTier(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}
