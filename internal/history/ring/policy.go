package ring

import "strings"

// DupPolicy controls how duplicate lines are recorded.
type DupPolicy int

const (
	// DupsKeep records every line, duplicates included.
	DupsKeep DupPolicy = iota

	// DupsIgnoreConsecutive skips a line equal to the most recent entry.
	DupsIgnoreConsecutive

	// DupsErase removes every earlier copy of a line before appending it,
	// so only the newest copy survives.
	DupsErase
)

// String returns the policy name as used in configuration files.
func (p DupPolicy) String() string {
	switch p {
	case DupsKeep:
		return "keep"
	case DupsIgnoreConsecutive:
		return "ignore"
	case DupsErase:
		return "erase"
	default:
		return "unknown"
	}
}

// Filter reports whether a line should be kept.
type Filter func(line string) bool

// Policy decides which lines Push records.
// The zero value records everything.
type Policy struct {
	// Dups selects the duplicate handling.
	Dups DupPolicy

	// Filter, when set, must return true for a line to be recorded.
	Filter Filter
}

// AlwaysAdd records every line.
func AlwaysAdd() Policy {
	return Policy{}
}

// SkipFiltered drops blank lines and lines rejected by keep.
// A nil keep only drops blank lines.
func SkipFiltered(keep Filter) Policy {
	return Policy{Filter: Chain(SkipBlank, keep)}
}

// IgnoreConsecutiveDups drops a line identical to the most recent entry.
func IgnoreConsecutiveDups() Policy {
	return Policy{Dups: DupsIgnoreConsecutive}
}

// EraseDups removes earlier copies of a line before appending it.
func EraseDups() Policy {
	return Policy{Dups: DupsErase}
}

// SkipBlank rejects empty and whitespace-only lines.
func SkipBlank(line string) bool {
	return strings.TrimSpace(line) != ""
}

// Chain returns a Filter that keeps a line only if every non-nil filter does.
func Chain(filters ...Filter) Filter {
	return func(line string) bool {
		for _, f := range filters {
			if f != nil && !f(line) {
				return false
			}
		}
		return true
	}
}

// keep reports whether the filter accepts line.
func (p Policy) keep(line string) bool {
	return p.Filter == nil || p.Filter(line)
}
