// Package metrics derives practice statistics from logged sessions.
//
// Everything here is a pure function of its inputs: the sessions of one
// skill, its target hours and the moment of computation. Nothing is
// persisted and nothing returns an error. A skill without sessions has no
// metrics at all (nil), which callers must treat as a distinct "no data"
// state rather than zero.
//
// Example usage:
//
//	m := metrics.Compute(sessions, skill.Settings.TargetHours, time.Now())
//	if m == nil {
//	    fmt.Println("No sessions logged yet")
//	    return
//	}
//	fmt.Printf("%.1f / %d hours (%.1f%%)\n", m.TotalHoursRounded, m.TargetHours, m.ProgressPercentage)
//
//	for day := range metrics.DailyHours(sessions) {
//	    fmt.Println(day.DisplayDate, day.Hours)
//	}
package metrics

import (
	"time"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

// Metrics contains the aggregate statistics of one skill.
type Metrics struct {
	// TotalMinutes is the sum of all session durations.
	TotalMinutes int `json:"totalMinutes"`

	// TotalHours is TotalMinutes / 60 at full precision. Milestone
	// comparisons use this value.
	TotalHours float64 `json:"totalHours"`

	// TotalHoursRounded is TotalHours rounded half away from zero to one
	// decimal place, for display.
	TotalHoursRounded float64 `json:"totalHoursRounded"`

	// TotalSessions is the number of sessions.
	TotalSessions int `json:"totalSessions"`

	// DaysPracticed is the number of distinct session dates.
	DaysPracticed int `json:"daysPracticed"`

	// AvgMinutesPerSession is TotalMinutes / TotalSessions rounded to the
	// nearest minute.
	AvgMinutesPerSession int `json:"avgMinutesPerSession"`

	// StartDate is the earliest session date.
	StartDate model.Date `json:"startDate"`

	// LastDate is the latest session date.
	LastDate model.Date `json:"lastDate"`

	// TimeRange is the number of days from StartDate to the moment of
	// computation, both ends inclusive. It keeps growing without new
	// sessions, so consistency decays over time.
	TimeRange int `json:"timeRange"`

	// ConsistencyPercent is DaysPracticed / TimeRange as a rounded
	// percentage, capped at 100.
	ConsistencyPercent int `json:"consistencyPercent"`

	// TargetHours is the mastery milestone used for the milestone block.
	TargetHours int `json:"targetHours"`

	// HoursRemaining is max(0, TargetHours - TotalHours).
	HoursRemaining float64 `json:"hoursRemaining"`

	// HoursAbove is max(0, TotalHours - TargetHours).
	HoursAbove float64 `json:"hoursAbove"`

	// ProgressPercentage is TotalHours / TargetHours * 100, capped at 100.
	ProgressPercentage float64 `json:"progressPercentage"`

	// IsMilestoneReached reports TotalHours >= TargetHours.
	IsMilestoneReached bool `json:"isMilestoneReached"`

	// EstimatedCompletionDate is the projected day the milestone is
	// reached at the current practice rate. Nil when reached or when no
	// rate can be derived.
	EstimatedCompletionDate *time.Time `json:"estimatedCompletionDate"`

	// EstimatedTimeText is the distance from now to
	// EstimatedCompletionDate in words, e.g. "3 months". Empty whenever
	// EstimatedCompletionDate is nil.
	EstimatedTimeText string `json:"estimatedTimeText"`
}

// DailyTotal is the practice total of one calendar date.
type DailyTotal struct {
	// Date is the practice date.
	Date model.Date `json:"date"`

	// Minutes is the summed duration of the date's sessions.
	Minutes int `json:"minutes"`

	// Hours is Minutes / 60 at full precision.
	Hours float64 `json:"hours"`

	// DisplayDate is the short display form, e.g. "Jun 10".
	DisplayDate string `json:"displayDate"`
}
