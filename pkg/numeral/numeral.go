// Package numeral converts mixed Arabic/CJK numeral strings with currency
// units into canonical integers, e.g. "35萬" -> 350000, "3千5百" -> 3500.
package numeral

import (
	"math"
	"strconv"
	"strings"
)

var cjkDigits = map[rune]int64{
	'零': 0, '一': 1, '二': 2, '兩': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var cjkUnits = map[rune]int64{
	'十': 10, '百': 100, '千': 1000,
}

// bigUnits are split off before positional parsing.
var bigUnits = []struct {
	marker rune
	mult   int64
}{
	{'億', 100_000_000},
	{'萬', 10_000},
}

// Normalize converts a numeral-with-unit string into a number. Non-string
// values and already-numeric values pass through unchanged. If the string
// cannot be parsed it is returned as-is; callers treat that as a free-text
// constraint.
func Normalize(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	cleaned := stripNoise(s)
	if cleaned == "" {
		return v
	}

	if n, ok := parseAmount(cleaned); ok {
		return n
	}
	return v
}

// parseAmount parses a cleaned numeral string, handling 億/萬 group markers
// before falling back to a direct or positional parse.
func parseAmount(s string) (int64, bool) {
	for _, bu := range bigUnits {
		idx := strings.IndexRune(s, bu.marker)
		if idx < 0 {
			continue
		}
		prefix := s[:idx]
		rest := s[idx+len(string(bu.marker)):]

		base, ok := parseNumber(prefix)
		if !ok {
			return 0, false
		}
		total := int64(math.Round(base * float64(bu.mult)))

		if rest != "" {
			if tail, ok := parseAmount(rest); ok {
				total += tail
			}
		}
		return total, true
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f == math.Trunc(f) {
			return int64(f), true
		}
		// Fractional with no unit marker: round like the unit path does.
		return int64(math.Round(f)), true
	}
	if n, ok := parseCJK(s); ok {
		return n, true
	}
	return 0, false
}

// parseNumber handles the prefix before a 萬/億 marker: an Arabic number
// (possibly fractional, "3.5萬") or a CJK positional numeral ("兩萬").
func parseNumber(s string) (float64, bool) {
	if s == "" {
		// A bare marker means one unit: "萬" == 10000.
		return 1, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	if n, ok := parseCJK(s); ok {
		return float64(n), true
	}
	return 0, false
}

// parseCJK scans right-to-left. A unit character (十/百/千) sets the active
// multiplier for the digit preceding it; a unit with no preceding digit
// counts as one; a trailing digit with no unit is added directly.
func parseCJK(s string) (int64, bool) {
	runes := []rune(s)
	var total int64
	var unit int64
	haveUnit := false

	for i := len(runes) - 1; i >= 0; i-- {
		ch := runes[i]
		if u, ok := cjkUnits[ch]; ok {
			if haveUnit {
				total += unit // implicit digit 1, e.g. "千五百"
			}
			unit = u
			haveUnit = true
			continue
		}

		var d int64
		if v, ok := cjkDigits[ch]; ok {
			d = v
		} else if ch >= '0' && ch <= '9' {
			d = int64(ch - '0')
		} else {
			return 0, false
		}

		if haveUnit {
			total += d * unit
			haveUnit = false
		} else {
			total += d
		}
	}
	if haveUnit {
		total += unit // leading unit alone, "十" == 10
	}
	return total, true
}

// stripNoise drops currency tokens and whitespace the way users type them:
// "35萬元", "NT$ 500,000", "50 萬 台幣".
func stripNoise(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '元', '台', '幣', '$', ',', '，', 'N', 'T':
			continue
		}
		if r == ' ' || r == '\t' || r == '　' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
