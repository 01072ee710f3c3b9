package grievance

import (
	"fmt"
	"strings"
)

// suffixLen is the number of entropy characters kept in a grievance ID.
const suffixLen = 6

// GenerateGrievanceID builds a human-legible grievance ID from the submission
// year and a source of entropy (any hex-ish string of at least six chars).
// The format is GRV-YYYY-XXXXXX.
func GenerateGrievanceID(year int, entropy string) string {
	clean := strings.ToUpper(strings.ReplaceAll(entropy, "-", ""))
	if len(clean) > suffixLen {
		clean = clean[:suffixLen]
	}
	return fmt.Sprintf("GRV-%04d-%s", year, clean)
}

// ParseGrievanceYear extracts the submission year from a grievance ID.
// Returns -1 if the ID format is invalid.
func ParseGrievanceYear(id string) int {
	var year int
	var suffix string
	_, err := fmt.Sscanf(id, "GRV-%4d-%s", &year, &suffix)
	if err != nil || len(suffix) != suffixLen {
		return -1
	}
	return year
}
