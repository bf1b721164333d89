package model

import "fmt"

// Theme is the display theme preference.
type Theme string

// Supported themes.
const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// themeCycle is the toggle order.
var themeCycle = []Theme{ThemeLight, ThemeDark, ThemeSystem}

// Themes returns all supported themes in toggle order.
func Themes() []Theme {
	out := make([]Theme, len(themeCycle))
	copy(out, themeCycle)
	return out
}

// ParseTheme validates and returns a theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
	return t, nil
}

// Valid reports whether t is a supported theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Next returns the theme that follows t in the toggle cycle.
// Unknown themes restart the cycle at light.
func (t Theme) Next() Theme {
	for i, c := range themeCycle {
		if c == t {
			return themeCycle[(i+1)%len(themeCycle)]
		}
	}
	return ThemeLight
}

// Resolve maps system to the concrete theme chosen by the host.
func (t Theme) Resolve(systemDark bool) Theme {
	switch t {
	case ThemeDark:
		return ThemeDark
	case ThemeSystem:
		if systemDark {
			return ThemeDark
		}
	}
	return ThemeLight
}
