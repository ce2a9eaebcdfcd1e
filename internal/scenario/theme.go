package scenario

import (
	"fmt"
	"sort"
	"strings"
)

// Theme is the colour scheme applied to a whole album.
type Theme struct {
	Name       string `yaml:"name" json:"name"`
	Background string `yaml:"background" json:"background"`
	Foreground string `yaml:"foreground" json:"foreground"`
	Outline    string `yaml:"outline" json:"outline"`
	Font       string `yaml:"font,omitempty" json:"font,omitempty"`
}

var themes = map[string]Theme{
	"office": {Name: "office", Background: "#000000", Foreground: "#ffffff", Outline: "#000000"},
	"dark":   {Name: "dark", Background: "#101418", Foreground: "#f0f0f0", Outline: "#000000"},
	"light":  {Name: "light", Background: "#fafafa", Foreground: "#202020", Outline: "#ffffff"},
	"sepia":  {Name: "sepia", Background: "#2b2118", Foreground: "#f4e4c1", Outline: "#1a120b", Font: "serif"},
}

// LookupTheme finds a built-in theme by case-insensitive name.
func LookupTheme(name string) (Theme, error) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	return t, nil
}

// ThemeNames lists the built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseHexColor turns "#rrggbb" into its components.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	var v uint32
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, fmt.Errorf("invalid colour %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%06x", &v); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
