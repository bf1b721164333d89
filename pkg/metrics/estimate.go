package metrics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// estimateMagnitudes phrase distances shorter than two months.
// Projections are whole days ahead, so nothing finer than hours is needed.
var estimateMagnitudes = []humanize.RelTimeMagnitude{
	{D: day, Format: "about %d hours", DivBy: time.Hour},
	{D: 2 * day, Format: "1 day", DivBy: 1},
	{D: 30 * humanize.Day, Format: "%d days", DivBy: humanize.Day},
	{D: 45 * humanize.Day, Format: "about 1 month", DivBy: 1},
	{D: 60 * humanize.Day, Format: "about 2 months", DivBy: 1},
}

// monthLength is the nominal month used to round month counts.
const monthLength = 30 * humanize.Day

// distanceText returns the distance from now to then in words.
//
// Under a year the month count is rounded. From a year on, the remainder
// in calendar months picks the wording: under 3 months "about N years",
// under 9 "over N years", otherwise "almost N+1 years".
func distanceText(now, then time.Time) string {
	if then.Before(now) {
		now, then = then, now
	}

	d := then.Sub(now)
	if d < 60*humanize.Day {
		return strings.TrimSpace(humanize.CustomRelTime(now, then, "", "", estimateMagnitudes))
	}

	months := calendarMonths(now, then)
	if months < 12 {
		return fmt.Sprintf("%d months", int(math.Round(float64(d)/float64(monthLength))))
	}

	years, rest := months/12, months%12
	switch {
	case rest < 3:
		return "about " + plural(years, "year")
	case rest < 9:
		return "over " + plural(years, "year")
	default:
		return "almost " + plural(years+1, "year")
	}
}

// calendarMonths counts the whole calendar months from a to b, b not
// before a.
func calendarMonths(a, b time.Time) int {
	n := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if n > 0 && b.AddDate(0, -n, 0).Before(a) {
		n--
	}
	return n
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
