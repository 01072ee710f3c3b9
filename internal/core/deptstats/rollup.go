package deptstats

import (
	"cmp"
	"slices"

	"github.com/example/grievd/internal/core/grievance"
)

// Rollup recomputes a department's stats from the views of all of its
// grievances. Views belonging to other departments are ignored.
func Rollup(departmentID string, views []grievance.View) Stats {
	total := Stats{DepartmentID: departmentID}
	for _, v := range views {
		if v.DepartmentID != departmentID {
			continue
		}
		c := Contribution(v)
		total.TotalComplaints += c.TotalComplaints
		total.ResolvedOnTime += c.ResolvedOnTime
		total.BreachedCount += c.BreachedCount
		total.EscalatedCount += c.EscalatedCount
	}
	return total
}

// Leaderboard orders departments by SLA score, best first.
// Ties break on fewer breaches, then on department id.
func Leaderboard(all []Stats) []Stats {
	out := slices.Clone(all)
	slices.SortStableFunc(out, func(a, b Stats) int {
		if c := cmp.Compare(b.SLAScore(), a.SLAScore()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.BreachRate(), b.BreachRate()); c != 0 {
			return c
		}
		return cmp.Compare(a.DepartmentID, b.DepartmentID)
	})
	return out
}
