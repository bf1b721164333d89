package validation

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/0xmhha/skill-tracker/pkg/model"
)

// intRange checks a whole number within [min, max].
type intRange struct {
	min, max int

	required string
	invalid  string
	fraction string
	tooSmall string
	tooLarge string
}

func (r intRange) check(value string, _ time.Time) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return r.required
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		if f, ferr := strconv.ParseFloat(v, 64); ferr == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return r.fraction
		}
		return r.invalid
	}

	switch {
	case n < r.min:
		return r.tooSmall
	case n > r.max:
		return r.tooLarge
	}
	return ""
}

// normalizeInt returns the decimal form of an integer value, or the
// trimmed input when it is not one.
func normalizeInt(value string) string {
	v := strings.TrimSpace(value)
	n, err := strconv.Atoi(v)
	if err != nil {
		return v
	}
	return strconv.Itoa(n)
}

func requiredText(message string) Check {
	return func(value string, _ time.Time) string {
		if strings.TrimSpace(value) == "" {
			return message
		}
		return ""
	}
}

func maxLength(limit int, message string) Check {
	return func(value string, _ time.Time) string {
		if utf8.RuneCountInString(value) > limit {
			return message
		}
		return ""
	}
}

// pastDate accepts YYYY-MM-DD dates up to and including today in now's
// location.
func pastDate(value string, now time.Time) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "Date is required"
	}

	d, err := model.ParseDate(v)
	if err != nil {
		return "Please enter a valid date"
	}

	if d.After(model.DateOf(now)) {
		return "Date cannot be in the future"
	}
	return ""
}

func theme(value string, _ time.Time) string {
	if _, err := model.ParseTheme(strings.TrimSpace(value)); err != nil {
		return "Theme must be light, dark or system"
	}
	return ""
}
