package gridimpact

import (
	"fmt"
	"strconv"
	"time"
)

// Granularity of a period.
type Granularity int

const (
	Yearly Granularity = iota
	Monthly
)

func (g Granularity) String() string {
	if g == Monthly {
		return "monthly"
	}
	return "yearly"
}

// Period is a yearly (YYYY) or monthly (YYYY-MM) time bucket. Periods sort
// chronologically as strings, a year sorting right before its first month.
type Period string

// YearPeriod returns the yearly period of year.
func YearPeriod(year int) Period {
	return Period(fmt.Sprintf("%04d", year))
}

// MonthPeriod returns the monthly period of year and month (1-12).
func MonthPeriod(year, month int) Period {
	return Period(fmt.Sprintf("%04d-%02d", year, month))
}

// DatePeriod returns the monthly period containing t.
func DatePeriod(t time.Time) Period {
	return MonthPeriod(t.UTC().Year(), int(t.UTC().Month()))
}

// Granularity reports whether p is yearly or monthly.
func (p Period) Granularity() Granularity {
	if len(p) == 7 {
		return Monthly
	}
	return Yearly
}

// Year returns the year of the period as a number.
func (p Period) Year() int {
	y, _ := strconv.Atoi(string(p[:min(4, len(p))]))
	return y
}

// Month returns the month (1-12) of a monthly period, 0 for a yearly one.
func (p Period) Month() int {
	if p.Granularity() != Monthly {
		return 0
	}
	m, _ := strconv.Atoi(string(p[5:7]))
	return m
}

// YearPeriod returns the yearly period containing p.
func (p Period) YearPeriod() Period {
	return YearPeriod(p.Year())
}

// ParsePeriod validates s as YYYY or YYYY-MM.
func ParsePeriod(s string) (Period, error) {
	switch len(s) {
	case 4:
		if _, err := time.Parse("2006", s); err != nil {
			return "", fmt.Errorf("invalid yearly period %q: %w", s, err)
		}
	case 7:
		if _, err := time.Parse("2006-01", s); err != nil {
			return "", fmt.Errorf("invalid monthly period %q: %w", s, err)
		}
	default:
		return "", fmt.Errorf("invalid period %q", s)
	}
	return Period(s), nil
}

// Range bounds the periods of a run. LastMonth limits the months of MaxYear
// that hold published data.
type Range struct {
	MinYear   int
	MaxYear   int
	LastMonth int
}

// Contains reports whether the year of p is within the range.
func (r Range) Contains(p Period) bool {
	y := p.Year()
	return y >= r.MinYear && y <= r.MaxYear
}

// Periods returns every period of granularity g in chronological order. All
// twelve months of every year are returned.
func (r Range) Periods(g Granularity) []Period {
	periods := make([]Period, 0)
	for year := r.MinYear; year <= r.MaxYear; year++ {
		if g == Yearly {
			periods = append(periods, YearPeriod(year))
			continue
		}
		for month := 1; month <= 12; month++ {
			periods = append(periods, MonthPeriod(year, month))
		}
	}
	return periods
}

// PublishedMonths returns the monthly periods holding data: every month up to
// LastMonth for MaxYear.
func (r Range) PublishedMonths() []Period {
	periods := make([]Period, 0)
	for year := r.MinYear; year <= r.MaxYear; year++ {
		lastMonth := 12
		if year == r.MaxYear {
			lastMonth = r.LastMonth
		}
		for month := 1; month <= lastMonth; month++ {
			periods = append(periods, MonthPeriod(year, month))
		}
	}
	return periods
}
