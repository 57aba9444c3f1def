package service

import (
	"slices"
	"strings"
)

// themeModifiers is the style table for themed generation.
var themeModifiers = map[string][]string{
	"cartoon": {
		"cartoon style", "animated", "disney style",
		"pixar style", "hand-drawn animation",
	},
	"realistic": {
		"photorealistic", "highly detailed", "professional photo",
		"realistic rendering", "4k resolution",
	},
	"fantasy": {
		"fantasy art", "magical atmosphere", "mystical",
		"ethereal", "dreamlike quality",
	},
}

// Themes lists the known theme names.
func Themes() []string {
	names := make([]string, 0, len(themeModifiers))
	for name := range themeModifiers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ThemeModifiers returns the modifiers for theme, or nil if it is unknown.
func ThemeModifiers(theme string) []string {
	return slices.Clone(themeModifiers[strings.ToLower(theme)])
}

func (s *DeckService) pickModifier(theme string) string {
	modifiers := themeModifiers[strings.ToLower(theme)]
	if len(modifiers) == 0 {
		return ""
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return modifiers[s.rng.IntN(len(modifiers))]
}
