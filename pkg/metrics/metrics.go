package metrics

import (
	"iter"
	"math"
	"slices"
	"time"

	"github.com/0xmhha/skill-tracker/pkg/fallback"
	"github.com/0xmhha/skill-tracker/pkg/model"
)

const day = 24 * time.Hour

// Compute derives the metrics of one skill.
//
// Parameters:
//   - sessions: every session of the skill, unfiltered
//   - targetHours: the skill's milestone; values <= 0 use the fallback
//   - now: the moment of computation
//
// Returns nil when sessions is empty.
func Compute(sessions []model.Session, targetHours int, now time.Time) *Metrics {
	if len(sessions) == 0 {
		return nil
	}

	if targetHours <= 0 {
		targetHours = fallback.Value[int](fallback.TargetHours)
	}

	m := &Metrics{
		TotalSessions: len(sessions),
		TargetHours:   targetHours,
	}

	dates := make(map[model.Date]struct{}, len(sessions))
	for i, s := range sessions {
		m.TotalMinutes += s.Duration
		dates[s.Date] = struct{}{}

		if i == 0 || s.Date.Before(m.StartDate) {
			m.StartDate = s.Date
		}
		if i == 0 || s.Date.After(m.LastDate) {
			m.LastDate = s.Date
		}
	}

	m.TotalHours = float64(m.TotalMinutes) / 60
	m.TotalHoursRounded = roundTo(m.TotalHours, 1)
	m.DaysPracticed = len(dates)
	m.AvgMinutesPerSession = int(math.Round(float64(m.TotalMinutes) / float64(m.TotalSessions)))
	m.TimeRange = daysInclusive(m.StartDate, now)

	if m.TimeRange > 0 {
		consistency := int(math.Round(float64(m.DaysPracticed) / float64(m.TimeRange) * 100))
		m.ConsistencyPercent = min(consistency, 100)
	}

	target := float64(targetHours)
	m.HoursRemaining = math.Max(0, target-m.TotalHours)
	m.HoursAbove = math.Max(0, m.TotalHours-target)
	m.ProgressPercentage = math.Min(100, m.TotalHours/target*100)
	m.IsMilestoneReached = m.TotalHours >= target

	if !m.IsMilestoneReached && m.TotalHours > 0 && m.TimeRange > 0 {
		// Rate over days actually practiced, not calendar days elapsed.
		avgHoursPerDay := m.TotalHours / float64(m.DaysPracticed)
		if avgHoursPerDay > 0 {
			daysToTarget := m.HoursRemaining / avgHoursPerDay
			completion := now.AddDate(0, 0, int(math.Ceil(daysToTarget)))
			m.EstimatedCompletionDate = &completion
			m.EstimatedTimeText = distanceText(now, completion)
		}
	}

	return m
}

// DailyHours groups sessions by date and yields one entry per date, most
// recent first. Each iteration recomputes the grouping from a snapshot of
// sessions taken at call time.
func DailyHours(sessions []model.Session) iter.Seq[DailyTotal] {
	snapshot := slices.Clone(sessions)

	return func(yield func(DailyTotal) bool) {
		totals := make(map[model.Date]int)
		for _, s := range snapshot {
			totals[s.Date] += s.Duration
		}

		dates := make([]model.Date, 0, len(totals))
		for d := range totals {
			dates = append(dates, d)
		}
		slices.SortFunc(dates, func(a, b model.Date) int {
			return b.Compare(a)
		})

		for _, d := range dates {
			minutes := totals[d]
			entry := DailyTotal{
				Date:        d,
				Minutes:     minutes,
				Hours:       float64(minutes) / 60,
				DisplayDate: d.Short(),
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// CollectDailyHours returns DailyHours as a slice.
func CollectDailyHours(sessions []model.Session) []DailyTotal {
	return slices.Collect(DailyHours(sessions))
}

// daysInclusive returns ceil((now - start) / 24h) + 1.
func daysInclusive(start model.Date, now time.Time) int {
	elapsed := now.Sub(start.Time())
	return int(math.Ceil(float64(elapsed)/float64(day))) + 1
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
