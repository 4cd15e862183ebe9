package analytics

import (
	"fmt"
	"math"
	"strings"
)

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatValue renders a metric value for display: integers without decimals,
// everything else with two and comma-separated thousands.
func FormatValue(v float64, integer bool) string {
	if integer {
		return FormatInt(int(math.Round(v)))
	}

	negative := v < 0
	if negative {
		v = -v
	}
	intPart := int64(v)
	decPart := int64(math.Round((v - float64(intPart)) * 100))
	if decPart == 100 { // rounding carried over
		intPart++
		decPart = 0
	}

	out := fmt.Sprintf("%s.%02d", FormatInt(int(intPart)), decPart)
	if negative {
		out = "-" + out
	}
	return out
}

// DisplayLabel capitalizes a key for axis/series labels: "unit_price" →
// "Unit price".
func DisplayLabel(key string) string {
	key = strings.ReplaceAll(key, "_", " ")
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
