package models

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
)

func ptr(f float64) *float64 { return &f }

func validRequest() SubmitRequest {
	return SubmitRequest{
		Type:        " Traffic_Issue ",
		Severity:    "HIGH",
		Description: "  Signal out at the Connaught Place junction ",
		Location:    "Connaught Place, New Delhi",
	}
}

func TestSubmitRequestValidate(t *testing.T) {
	t.Run("normalized request is valid", func(t *testing.T) {
		req := validRequest()
		req.Normalize()
		require.NoError(t, req.Validate())
		assert.Equal(t, "traffic_issue", req.Type)
		assert.Equal(t, "high", req.Severity)
		assert.Equal(t, "Signal out at the Connaught Place junction", req.Description)
	})

	cases := map[string]struct {
		mutate func(*SubmitRequest)
		msg    string
	}{
		"missing type":          {func(r *SubmitRequest) { r.Type = "" }, "type is required"},
		"unknown type":          {func(r *SubmitRequest) { r.Type = "riot" }, "unknown hazard type"},
		"missing severity":      {func(r *SubmitRequest) { r.Severity = " " }, "severity is required"},
		"unknown severity":      {func(r *SubmitRequest) { r.Severity = "severe" }, "severity must be one of"},
		"blank description":     {func(r *SubmitRequest) { r.Description = "\t" }, "description is required"},
		"long description":      {func(r *SubmitRequest) { r.Description = strings.Repeat("x", 2001) }, "description is too long"},
		"long location":         {func(r *SubmitRequest) { r.Location = strings.Repeat("x", 257) }, "location is too long"},
		"half a coordinate":     {func(r *SubmitRequest) { r.Latitude = ptr(28.6) }, "must be given together"},
		"latitude out of range": {func(r *SubmitRequest) { r.Latitude, r.Longitude = ptr(91), ptr(77.2) }, "out of range"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			req.Normalize()
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			assert.Contains(t, err.Error(), tc.msg)
		})
	}

	t.Run("every form type is accepted", func(t *testing.T) {
		for _, typ := range []Type{
			TypeSafetyIncident, TypeTrafficIssue, TypeInfrastructureProblem, TypeSuspiciousActivity,
			TypeMedicalEmergency, TypeEnvironmentalHazard, TypeCrowdControlIssue, TypeOther,
		} {
			req := validRequest()
			req.Type = string(typ)
			req.Normalize()
			assert.NoError(t, req.Validate(), typ)
			assert.NotEmpty(t, typ.Label())
		}
	})
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Zero(t, Severity("extreme").Rank())

	s, err := ParseSeverity(" Critical ")
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, s)
}

func TestNewReport(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	reporter := Reporter{SessionID: id.NewSessionID(), Name: "Asha"}

	t.Run("named report keeps the reporter", func(t *testing.T) {
		req := validRequest()
		req.Normalize()
		r := NewReport(req, reporter, now)

		assert.False(t, r.ID == id.ReportID{})
		assert.Equal(t, TypeTrafficIssue, r.Type)
		assert.Equal(t, SeverityHigh, r.Severity)
		require.NotNil(t, r.ReporterSessionID)
		assert.Equal(t, reporter.SessionID, *r.ReporterSessionID)
		assert.Equal(t, "Asha", r.ReporterName)
		assert.Equal(t, now, r.CreatedAt)
	})

	t.Run("anonymous report drops the reporter", func(t *testing.T) {
		req := validRequest()
		req.Anonymous = true
		req.Normalize()
		r := NewReport(req, reporter, now)

		assert.True(t, r.Anonymous)
		assert.Nil(t, r.ReporterSessionID)
		assert.Empty(t, r.ReporterName)
	})
}

func TestNewCode(t *testing.T) {
	pattern := regexp.MustCompile(`^HR[0-9A-Z]{6}$`)
	for range 50 {
		assert.Regexp(t, pattern, NewCode())
	}
}
