package audit

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategorySafety covers emergency activity: SOS alerts and hazard reports.
	CategorySafety EventCategory = "safety"

	// CategorySecurity covers authentication outcomes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine session activity.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	// Session events
	EventTouristLogin   AuditEvent = "tourist_login"
	EventPoliceLogin    AuditEvent = "police_login"
	EventAuthFailed     AuditEvent = "auth_failed"
	EventLogout         AuditEvent = "logout"
	EventSessionExpired AuditEvent = "session_expired"

	// SOS events
	EventSOSArmed      AuditEvent = "sos_armed"
	EventSOSDispatched AuditEvent = "sos_dispatched"
	EventSOSCancelled  AuditEvent = "sos_cancelled"
	EventSOSClosed     AuditEvent = "sos_closed"

	// Community reports
	EventHazardReported AuditEvent = "hazard_reported"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthFailed:   CategorySecurity,
	EventPoliceLogin:  CategorySecurity,
	EventTouristLogin: CategoryOperations,
	EventLogout:       CategoryOperations,

	EventSessionExpired: CategoryOperations,

	EventSOSArmed:      CategorySafety,
	EventSOSDispatched: CategorySafety,
	EventSOSCancelled:  CategorySafety,
	EventSOSClosed:     CategorySafety,

	EventHazardReported: CategorySafety,
}

// Category returns the category of e. Unknown events are operational.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
