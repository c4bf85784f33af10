package domain

import (
	"fmt"
	"strings"
)

// ValidateLevels checks that observed levels are non-negative with ascending,
// unique years. An empty series is valid.
func ValidateLevels(points []HistoricalLevelPoint) error {
	for i, p := range points {
		if p.Level < 0 {
			return fmt.Errorf("year %d: negative level %v", p.Year, p.Level)
		}
		if i > 0 && p.Year <= points[i-1].Year {
			return fmt.Errorf("year %d follows %d: years must be ascending and unique", p.Year, points[i-1].Year)
		}
	}
	return nil
}

// ValidateRainfall checks that a monthly series covers Jan through Dec in
// order with non-negative rainfall. An empty series is valid.
func ValidateRainfall(points []MonthlyRainfallPoint) error {
	if len(points) == 0 {
		return nil
	}
	if len(points) != len(Months) {
		return fmt.Errorf("got %d months, want %d", len(points), len(Months))
	}
	for i, p := range points {
		if !strings.EqualFold(strings.TrimSpace(p.Month), Months[i]) {
			return fmt.Errorf("month %d is %q, want %q", i+1, p.Month, Months[i])
		}
		if p.Rainfall < 0 {
			return fmt.Errorf("%s: negative rainfall %v", p.Month, p.Rainfall)
		}
	}
	return nil
}
