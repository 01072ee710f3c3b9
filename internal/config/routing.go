package config

import (
	"strings"

	"github.com/example/grievd/internal/ports/secondary"
)

// Routing serves the routing section of the loader's current config. Every
// lookup reads the latest config, so a reload takes effect for the next
// SUBMITTED or REOPENED command.
type Routing struct {
	loader *Loader
}

// NewRouting creates a routing table backed by loader.
func NewRouting(loader *Loader) *Routing {
	return &Routing{loader: loader}
}

var (
	_ secondary.RoutingTable        = (*Routing)(nil)
	_ secondary.DepartmentDirectory = (*Routing)(nil)
)

// DepartmentFor returns the department handling a category. Category
// names are matched case-insensitively.
func (r *Routing) DepartmentFor(category string) (string, bool) {
	categories := r.loader.Config().Routing.Categories
	if dept, ok := categories[category]; ok {
		return dept, true
	}
	for name, dept := range categories {
		if strings.EqualFold(name, category) {
			return dept, true
		}
	}
	return "", false
}

// SLAWindowDays returns the SLA window configured for a department.
func (r *Routing) SLAWindowDays(departmentID string) (int, bool) {
	d, ok := r.loader.Config().Routing.Departments[departmentID]
	if !ok {
		return 0, false
	}
	return d.SLAWindowDays, true
}

// Departments returns every configured department id, sorted.
func (r *Routing) Departments() []string {
	return sortedKeys(r.loader.Config().Routing.Departments)
}

// DepartmentName returns the display name of a department.
func (r *Routing) DepartmentName(departmentID string) (string, bool) {
	d, ok := r.loader.Config().Routing.Departments[departmentID]
	if !ok {
		return "", false
	}
	return d.Name, true
}
