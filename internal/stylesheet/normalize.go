package stylesheet

import (
	"regexp"
	"strings"
)

// namedColors maps the common CSS color keywords to their 8-digit RGBA
// expansion. The list is fixed and closed: changing it does not affect
// classification, but it changes the normalized values written to the
// binary artifact for existing rules.
var namedColors = map[string]string{
	"black":       "#000000FF",
	"white":       "#FFFFFFFF",
	"red":         "#FF0000FF",
	"green":       "#008000FF",
	"blue":        "#0000FFFF",
	"yellow":      "#FFFF00FF",
	"orange":      "#FFA500FF",
	"purple":      "#800080FF",
	"gray":        "#808080FF",
	"grey":        "#808080FF",
	"silver":      "#C0C0C0FF",
	"maroon":      "#800000FF",
	"olive":       "#808000FF",
	"lime":        "#00FF00FF",
	"teal":        "#008080FF",
	"navy":        "#000080FF",
	"fuchsia":     "#FF00FFFF",
	"aqua":        "#00FFFFFF",
	"cyan":        "#00FFFFFF",
	"magenta":     "#FF00FFFF",
	"pink":        "#FFC0CBFF",
	"brown":       "#A52A2AFF",
	"gold":        "#FFD700FF",
	"indigo":      "#4B0082FF",
	"violet":      "#EE82EEFF",
	"coral":       "#FF7F50FF",
	"salmon":      "#FA8072FF",
	"khaki":       "#F0E68CFF",
	"crimson":     "#DC143CFF",
	"chocolate":   "#D2691EFF",
	"tomato":      "#FF6347FF",
	"orchid":      "#DA70D6FF",
	"plum":        "#DDA0DDFF",
	"skyblue":     "#87CEEBFF",
	"slategray":   "#708090FF",
	"slategrey":   "#708090FF",
	"transparent": "#00000000",
}

var namedColorRE = buildNamedColorRE()

func buildNamedColorRE() *regexp.Regexp {
	names := make([]string, 0, len(namedColors))
	for name := range namedColors {
		names = append(names, name)
	}
	// Longest-first so e.g. "slategray" is not shadowed by a shorter
	// alternative sharing a prefix.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && len(names[j]) > len(names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
}

var hexColorRE = regexp.MustCompile(`#([0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{4}|[0-9a-fA-F]{3})\b`)

// expandHex expands a #rgb/#rgba/#rrggbb/#rrggbbaa digit string (without
// the leading '#') to its 8-digit upper-case RGBA form.
func expandHex(digits string) string {
	up := strings.ToUpper(digits)
	switch len(up) {
	case 3:
		return "#" + string([]byte{up[0], up[0], up[1], up[1], up[2], up[2]}) + "FF"
	case 4:
		return "#" + string([]byte{up[0], up[0], up[1], up[1], up[2], up[2], up[3], up[3]})
	case 6:
		return "#" + up + "FF"
	case 8:
		return "#" + up
	default:
		return "#" + up
	}
}

// normalizeValue collapses whitespace, expands hex colors to 8-digit
// upper-case RGBA, and maps named color keywords to the same fixed RGBA
// form (§4.2 Normalization).
func normalizeValue(raw string) string {
	v := squeezeWhitespace(raw)
	v = hexColorRE.ReplaceAllStringFunc(v, func(m string) string {
		return expandHex(strings.TrimPrefix(m, "#"))
	})
	v = namedColorRE.ReplaceAllStringFunc(v, func(m string) string {
		if rgba, ok := namedColors[strings.ToLower(m)]; ok {
			return rgba
		}
		return m
	})
	return v
}
