// Package models defines community hazard reports filed by tourists.
package models

import (
	"math"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
)

// Type is the kind of hazard being reported.
type Type string

const (
	TypeSafetyIncident        Type = "safety_incident"
	TypeTrafficIssue          Type = "traffic_issue"
	TypeInfrastructureProblem Type = "infrastructure_problem"
	TypeSuspiciousActivity    Type = "suspicious_activity"
	TypeMedicalEmergency      Type = "medical_emergency"
	TypeEnvironmentalHazard   Type = "environmental_hazard"
	TypeCrowdControlIssue     Type = "crowd_control_issue"
	TypeOther                 Type = "other"
)

var typeLabels = map[Type]string{
	TypeSafetyIncident:        "Safety Incident",
	TypeTrafficIssue:          "Traffic Issue",
	TypeInfrastructureProblem: "Infrastructure Problem",
	TypeSuspiciousActivity:    "Suspicious Activity",
	TypeMedicalEmergency:      "Medical Emergency",
	TypeEnvironmentalHazard:   "Environmental Hazard",
	TypeCrowdControlIssue:     "Crowd Control Issue",
	TypeOther:                 "Other",
}

func (t Type) IsValid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label is the name shown in the reporting form.
func (t Type) Label() string {
	return typeLabels[t]
}

// Severity grades a report from low to critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

func (s Severity) IsValid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Rank orders severities; unknown values rank 0.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// ParseSeverity accepts a severity in any letter case.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "severity must be one of low, medium, high, critical")
	}
	return s, nil
}

const (
	maxDescriptionLength = 2000
	maxLocationLength    = 256
)

// SubmitRequest is the body of POST /hazards.
type SubmitRequest struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Anonymous   bool     `json:"anonymous"`
}

// Normalize trims free text and lowercases the enumerations.
func (r *SubmitRequest) Normalize() {
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Severity = strings.ToLower(strings.TrimSpace(r.Severity))
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
}

// Validate checks a normalized request. Type, severity and description are
// required; coordinates are optional but must come as a pair.
func (r *SubmitRequest) Validate() error {
	if r.Type == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "type is required")
	}
	if !Type(r.Type).IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown hazard type")
	}
	if r.Severity == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "severity is required")
	}
	if _, err := ParseSeverity(r.Severity); err != nil {
		return err
	}
	if r.Description == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "description is required")
	}
	if utf8.RuneCountInString(r.Description) > maxDescriptionLength {
		return dErrors.New(dErrors.CodeInvalidInput, "description is too long")
	}
	if utf8.RuneCountInString(r.Location) > maxLocationLength {
		return dErrors.New(dErrors.CodeInvalidInput, "location is too long")
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return dErrors.New(dErrors.CodeInvalidInput, "latitude and longitude must be given together")
	}
	if r.Latitude != nil && !validCoordinates(*r.Latitude, *r.Longitude) {
		return dErrors.New(dErrors.CodeInvalidInput, "coordinates out of range")
	}
	return nil
}

func validCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Reporter is the tourist session filing a report.
type Reporter struct {
	SessionID id.SessionID
	Name      string
}

// Report is a submitted hazard as officers see it. Anonymous reports carry
// no reporter fields.
type Report struct {
	ID                id.ReportID   `json:"report_id"`
	Code              string        `json:"code"`
	Type              Type          `json:"type"`
	Severity          Severity      `json:"severity"`
	Description       string        `json:"description"`
	Location          string        `json:"location,omitempty"`
	Latitude          *float64      `json:"latitude,omitempty"`
	Longitude         *float64      `json:"longitude,omitempty"`
	Anonymous         bool          `json:"anonymous"`
	ReporterSessionID *id.SessionID `json:"reporter_session_id,omitempty"`
	ReporterName      string        `json:"reporter_name,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// NewReport builds a report from a validated request.
func NewReport(req SubmitRequest, reporter Reporter, now time.Time) *Report {
	r := &Report{
		ID:          id.NewReportID(),
		Code:        NewCode(),
		Type:        Type(req.Type),
		Severity:    Severity(req.Severity),
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Anonymous:   req.Anonymous,
		CreatedAt:   now.UTC(),
	}
	if !req.Anonymous {
		sessionID := reporter.SessionID
		r.ReporterSessionID = &sessionID
		r.ReporterName = reporter.Name
	}
	return r
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewCode returns the reference handed back to the reporter: "HR" and six
// base-36 characters.
func NewCode() string {
	var b strings.Builder
	b.Grow(8)
	b.WriteString("HR")
	for range 6 {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}
