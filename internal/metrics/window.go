package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
)

// Filter is a named shorthand for a date range.
type Filter string

const (
	FilterToday     Filter = "today"
	FilterYesterday Filter = "yesterday"
	Filter7d        Filter = "7d"
	Filter30d       Filter = "30d"
	FilterMTD       Filter = "mtd"
	FilterYTD       Filter = "ytd"
	FilterCustom    Filter = "custom"
)

// ParseFilter normalizes a filter token, falling back to def when s is blank.
// Unknown tokens are returned as is and rejected by Resolve.
func ParseFilter(s string, def Filter) Filter {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	return Filter(s)
}

// Resolver turns filters into concrete day ranges relative to its clock.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver creates a resolver. "Today" is the calendar day of now() in loc.
func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

// Today returns the current calendar day.
func (r *Resolver) Today() time.Time {
	return entity.DateOf(r.now().In(r.loc))
}

// Resolve maps a filter, or explicit bounds when both are given, to an inclusive range.
// Explicit bounds take precedence over the filter.
func (r *Resolver) Resolve(f Filter, from, to *time.Time) (entity.TimeRange, error) {
	switch {
	case from != nil && to != nil:
		return NewRange(*from, *to)
	case from != nil || to != nil:
		return entity.TimeRange{}, gerr.IncompleteRange
	}

	today := r.Today()
	switch f {
	case FilterToday:
		return entity.TimeRange{From: today, To: today}, nil
	case FilterYesterday:
		y := today.AddDate(0, 0, -1)
		return entity.TimeRange{From: y, To: y}, nil
	case Filter7d:
		return entity.TimeRange{From: today.AddDate(0, 0, -7), To: today}, nil
	case Filter30d:
		return entity.TimeRange{From: today.AddDate(0, 0, -30), To: today}, nil
	case FilterMTD:
		return entity.TimeRange{
			From: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
			To:   today,
		}, nil
	case FilterYTD:
		return entity.TimeRange{
			From: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			To:   today,
		}, nil
	case FilterCustom:
		return entity.TimeRange{}, gerr.CustomRangeRequired
	default:
		return entity.TimeRange{}, fmt.Errorf("%w: %q", gerr.UnknownFilter, string(f))
	}
}

// Trailing returns the range of the last n days ending today, e.g. Trailing(7) is the "7d" window.
func (r *Resolver) Trailing(days int) entity.TimeRange {
	today := r.Today()
	return entity.TimeRange{From: today.AddDate(0, 0, -days), To: today}
}

// ParseDate accepts a calendar day (2006-01-02) or an RFC 3339 timestamp.
// Timestamps are converted to the resolver's location before taking the day.
func (r *Resolver) ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(entity.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", gerr.BadDate, s)
	}
	return entity.DateOf(t.In(r.loc)), nil
}

// NewRange builds an inclusive day range, rejecting to < from.
func NewRange(from, to time.Time) (entity.TimeRange, error) {
	tr := entity.TimeRange{From: entity.DateOf(from), To: entity.DateOf(to)}
	if tr.To.Before(tr.From) {
		return entity.TimeRange{}, fmt.Errorf("%w: %s > %s", gerr.InvalidRange,
			tr.From.Format(entity.DateLayout), tr.To.Format(entity.DateLayout))
	}
	return tr, nil
}

// PreviousPeriod returns the range of equal length ending the day before tr.From.
func PreviousPeriod(tr entity.TimeRange) entity.TimeRange {
	n := tr.Days()
	return entity.TimeRange{
		From: tr.From.AddDate(0, 0, -n),
		To:   tr.To.AddDate(0, 0, -n),
	}
}
