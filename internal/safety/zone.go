// Package safety grades a location's safety score.
package safety

import (
	"fmt"

	dErrors "abhaya/pkg/domain-errors"
)

type Zone string

const (
	ZoneSafe     Zone = "safe"
	ZoneCaution  Zone = "caution"
	ZoneHighRisk Zone = "high_risk"
)

const (
	SafeThreshold    = 80
	CautionThreshold = 60
)

// Assessment is a graded score with the advisory shown to tourists.
type Assessment struct {
	Score    int    `json:"score"`
	Zone     Zone   `json:"zone"`
	Advisory string `json:"advisory"`
}

// Classify maps a 0-100 score to its zone.
func Classify(score int) Zone {
	switch {
	case score >= SafeThreshold:
		return ZoneSafe
	case score >= CautionThreshold:
		return ZoneCaution
	default:
		return ZoneHighRisk
	}
}

// Assess validates score and grades it.
func Assess(score int) (Assessment, error) {
	if score < 0 || score > 100 {
		return Assessment{}, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("score must be between 0 and 100, got %d", score))
	}
	zone := Classify(score)
	return Assessment{Score: score, Zone: zone, Advisory: advisories[zone]}, nil
}

var advisories = map[Zone]string{
	ZoneSafe:     "Safe zone",
	ZoneCaution:  "Entering caution zone",
	ZoneHighRisk: "High-risk area detected. Exercise extreme caution and consider leaving",
}
