package grievance

// DepartmentRecipient addresses a department's inbox.
func DepartmentRecipient(departmentID string) string {
	return "dept:" + departmentID
}

// Recipients decides who hears about ev, given the view after it was applied.
// The citizen hears about everything; escalations also go to the department,
// and escalations and reopenings go to the assigned officer when there is one.
func Recipients(v View, ev Event) []string {
	var out []string
	if v.CitizenID != "" {
		out = append(out, v.CitizenID)
	}
	switch ev.Type {
	case EventEscalated:
		if v.DepartmentID != "" {
			out = append(out, DepartmentRecipient(v.DepartmentID))
		}
		if v.AssignedOfficerID != "" {
			out = append(out, v.AssignedOfficerID)
		}
	case EventReopened:
		if v.AssignedOfficerID != "" {
			out = append(out, v.AssignedOfficerID)
		} else if v.DepartmentID != "" {
			out = append(out, DepartmentRecipient(v.DepartmentID))
		}
	case EventAssigned:
		if v.AssignedOfficerID != "" {
			out = append(out, v.AssignedOfficerID)
		}
	}
	return out
}
