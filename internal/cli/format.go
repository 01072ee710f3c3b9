package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/core/sla"
	"github.com/example/grievd/internal/ports/primary"
)

// colorSLA renders an SLA status in its traffic-light colour.
func colorSLA(s sla.Status) string {
	switch s {
	case sla.OnTrack:
		return color.New(color.FgGreen).Sprint(s)
	case sla.AtRisk:
		return color.New(color.FgYellow).Sprint(s)
	case sla.Breached:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	default:
		return string(s)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// printView writes a grievance view as labelled lines.
func printView(w io.Writer, v *grievance.View) {
	fmt.Fprintf(w, "Grievance: %s\n", v.ID)
	fmt.Fprintf(w, "Status: %s\n", v.Status)
	fmt.Fprintf(w, "SLA: %s (%d%% elapsed)\n", colorSLA(v.SLAStatus), v.SLAElapsedPercent)
	fmt.Fprintf(w, "Department: %s\n", orDash(v.DepartmentID))
	if v.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", v.Category)
	}
	fmt.Fprintf(w, "Citizen: %s\n", v.CitizenID)
	if v.AssignedOfficerID != "" {
		fmt.Fprintf(w, "Officer: %s\n", v.AssignedOfficerID)
	}
	fmt.Fprintf(w, "Submitted: %s\n", formatTime(v.SubmittedAt))
	fmt.Fprintf(w, "Deadline: %s\n", formatTime(v.SLADeadlineAt))
	if v.ClosedAt != nil {
		fmt.Fprintf(w, "Closed: %s\n", formatTime(*v.ClosedAt))
	}
	if v.ReopenCount > 0 || v.EscalationCount > 0 {
		fmt.Fprintf(w, "Reopened: %d  Escalated: %d\n", v.ReopenCount, v.EscalationCount)
	}
	if v.DelayExplanation != "" {
		fmt.Fprintf(w, "Delay: %s\n", v.DelayExplanation)
	}
	for _, ref := range v.EvidenceRefs {
		fmt.Fprintf(w, "Evidence: %s\n", ref)
	}
	fmt.Fprintf(w, "Version: %d\n", v.Version)
}

// printEvents writes an event log as a table.
func printEvents(out io.Writer, events []grievance.Event) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tEVENT\tACTOR\tROLE\tOCCURRED\tPAYLOAD")
	fmt.Fprintln(w, "---\t-----\t-----\t----\t--------\t-------")
	for _, ev := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			ev.Sequence,
			ev.Type,
			ev.ActorID,
			ev.ActorRole,
			formatTime(ev.OccurredAt),
			formatPayload(ev.Payload),
		)
	}
	w.Flush()
}

// printStats writes department aggregates as a table in the given order.
func printStats(out io.Writer, stats []*primary.DepartmentStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DEPARTMENT\tNAME\tTOTAL\tON-TIME\tBREACHED\tESCALATED\tSLA SCORE\tBREACH RATE")
	fmt.Fprintln(w, "----------\t----\t-----\t-------\t--------\t---------\t---------\t-----------")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d%%\t%d%%\n",
			s.DepartmentID,
			orDash(s.Name),
			s.TotalComplaints,
			s.ResolvedOnTime,
			s.BreachedCount,
			s.EscalatedCount,
			s.SLAScore,
			s.BreachRate,
		)
	}
	w.Flush()
}

func formatPayload(p map[string]string) string {
	if len(p) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(p))
	for _, k := range slices.Sorted(maps.Keys(p)) {
		parts = append(parts, k+"="+p[k])
	}
	return strings.Join(parts, " ")
}

// parseFields turns repeated key=value flags into a payload.
func parseFields(fields []string) (map[string]string, error) {
	payload := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q (want key=value)", f)
		}
		payload[k] = v
	}
	return payload, nil
}
