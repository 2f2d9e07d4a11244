package typed

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NaN is the sentinel written when numeric or date input cannot be coerced.
const NaN = "NaN"

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	epochMillis = regexp.MustCompile(`^-?\d+$`)
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// stringify renders plain values the way they appear in a text input.
func stringify(plain any) string {
	switch v := plain.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case time.Time:
		return strconv.FormatInt(v.UnixMilli(), 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// parseInteger follows parseInt(value, 10): leading whitespace is skipped and
// the longest integer prefix wins. ok is false when no digits are found.
func parseInteger(plain any) (int64, bool) {
	switch v := plain.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return truncate(float64(v))
	case float64:
		return truncate(v)
	case bool, nil:
		return 0, false
	}
	match := intPrefix.FindString(strings.TrimSpace(stringify(plain)))
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// parseDouble follows parseFloat(value): the longest decimal prefix wins and
// "Infinity" is understood.
func parseDouble(plain any) (float64, bool) {
	switch v := plain.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), !math.IsNaN(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case bool, nil:
		return 0, false
	}

	raw := strings.TrimSpace(stringify(plain))
	for _, inf := range []string{"Infinity", "+Infinity"} {
		if strings.HasPrefix(raw, inf) {
			return math.Inf(1), true
		}
	}
	if strings.HasPrefix(raw, "-Infinity") {
		return math.Inf(-1), true
	}
	match := floatPrefix.FindString(raw)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseDate returns epoch milliseconds. Zoneless layouts are read as UTC and
// all-digit strings are taken as epoch milliseconds already.
func parseDate(plain any) (int64, bool) {
	switch v := plain.(type) {
	case time.Time:
		if v.IsZero() {
			return 0, false
		}
		return v.UnixMilli(), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return 0, false
		}
		return v.UnixMilli(), true
	case bool, nil:
		return 0, false
	case float64, float32, int, int64, int32:
		return parseInteger(v)
	}

	raw := strings.TrimSpace(stringify(plain))
	if raw == "" {
		return 0, false
	}
	if epochMillis.MatchString(raw) {
		n, err := strconv.ParseInt(raw, 10, 64)
		return n, err == nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// formatFloat renders f the way number-to-string conversion does in
// JavaScript: plain decimals between 1e-6 and 1e21, exponent form outside.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return NaN
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		// exponent form without padding: 1e+300, 1.5e-7
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
