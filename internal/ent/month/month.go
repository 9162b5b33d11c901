// Package month converts textual and numeric months into month numbers.
package month

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrBadMonth is returned when a string cannot be interpreted as a month.
var ErrBadMonth = errors.New("cannot parse month")

var names = func() map[string]time.Month {
	res := make(map[string]time.Month, 36)
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		res[full] = m
		res[full[:3]] = m
	}
	res["sept"] = time.September
	return res
}()

// Parse converts a month name, its 3-letter abbreviation, or a number from
// 1 to 12 into a month. Case and surrounding spaces are ignored.
func Parse(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrBadMonth
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, ErrBadMonth
		}
		return time.Month(n), nil
	}
	s = cases.Lower(language.English).String(strings.TrimSuffix(s, "."))
	if m, ok := names[s]; ok {
		return m, nil
	}
	return 0, ErrBadMonth
}

// Normalize maps a positive month counter to 1..12, so that 13 becomes
// January, 14 February, and so on.
func Normalize(n int) (time.Month, error) {
	if n < 1 {
		return 0, ErrBadMonth
	}
	return time.Month((n-1)%12 + 1), nil
}

// ParseCounter accepts either a month name or a positive month counter,
// which is normalized to 1..12.
func ParseCounter(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Normalize(n)
	}
	return Parse(s)
}

// All returns months from January to December.
func All() []time.Month {
	res := make([]time.Month, 12)
	for i := range res {
		res[i] = time.Month(i + 1)
	}
	return res
}
