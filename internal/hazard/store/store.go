// Package store keeps hazard reports for the police console.
package store

import "abhaya/internal/hazard/models"

// DefaultListLimit caps ListRecent when callers pass a non-positive limit.
const DefaultListLimit = 50

// ListFilter narrows a console listing. A zero MinSeverity lists every report.
type ListFilter struct {
	Limit       int
	MinSeverity models.Severity
}

func (f ListFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}
