// Package calendar lays out a month as weeks of day cells annotated with the
// schedule, for the month view reply and the HTTP API.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"plancal/internal/model"
)

var (
	ErrInvalidFormat = errors.New("invalid year-month format")
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
)

const (
	// NoPlan is shown for days without a DayPlan.
	NoPlan = "無計畫"

	strike = "~~"
)

// ParseYearMonth parses "YYYY-MM". The input must split on "-" into exactly
// two integers; the month must lie in 1..12 and the year in 1..9999.
func ParseYearMonth(s string) (int, time.Month, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if year < 1 || year > 9999 {
		return 0, 0, fmt.Errorf("%w: year %d out of range", ErrInvalidFormat, year)
	}
	return year, time.Month(month), nil
}

// MonthGrid returns the month as rows of seven day-of-month numbers starting
// at weekStart. Cells outside the month are 0.
func MonthGrid(year int, month time.Month, weekStart time.Weekday) ([][7]int, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: first,
		Until:   last,
	})
	if err != nil {
		return nil, fmt.Errorf("month rule: %w", err)
	}

	var (
		weeks [][7]int
		week  [7]int
		empty [7]int
	)
	for _, d := range rule.All() {
		col := (int(d.Weekday()) - int(weekStart) + 7) % 7
		if col == 0 && week != empty {
			weeks = append(weeks, week)
			week = empty
		}
		week[col] = d.Day()
	}
	if week != empty {
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// Day is one real (non-padding) cell of the grid.
type Day struct {
	Day  int
	Date string
	Past bool
	// Plan is nil when the date has not been initialized.
	Plan *model.DayPlan
}

// Week is one grid row. Index is 1-based within the month.
type Week struct {
	Index int
	Days  []Day
}

// Section is a rendered week: label plus text block.
type Section struct {
	Label string
	Text  string
}

// View is the annotated month.
type View struct {
	Year  int
	Month time.Month
	Weeks []Week
}

// Build annotates the month grid with plans from s. A day counts as past when
// its date is on or before today's calendar date; the time of day is ignored.
func Build(s *model.Schedule, year int, month time.Month, today time.Time, weekStart time.Weekday) (View, error) {
	grid, err := MonthGrid(year, month, weekStart)
	if err != nil {
		return View{}, err
	}

	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	view := View{Year: year, Month: month}

	for i, row := range grid {
		week := Week{Index: i + 1}
		for _, dom := range row {
			if dom == 0 {
				continue
			}
			date := time.Date(year, month, dom, 0, 0, 0, 0, time.UTC)
			day := Day{
				Day:  dom,
				Date: date.Format(model.DateLayout),
				Past: !date.After(todayDate),
			}
			if plan, ok := s.Day(day.Date); ok {
				day.Plan = plan
			}
			week.Days = append(week.Days, day)
		}
		// Only a row of pure padding is dropped.
		if len(week.Days) == 0 {
			continue
		}
		view.Weeks = append(view.Weeks, week)
	}
	return view, nil
}

// Sections renders every week in order.
func (v View) Sections() []Section {
	out := make([]Section, 0, len(v.Weeks))
	for _, w := range v.Weeks {
		out = append(out, Section{Label: w.Label(), Text: w.Text()})
	}
	return out
}

func (w Week) Label() string {
	return fmt.Sprintf("第 %d 週", w.Index)
}

// Text renders each day as "<date label>:\n<tasks>\n\n". Past days have both
// parts struck through; the stored task strings are not modified.
func (w Week) Text() string {
	var b strings.Builder
	for _, d := range w.Days {
		b.WriteString(d.Label())
		b.WriteString(":\n")
		b.WriteString(d.Tasks())
		b.WriteString("\n\n")
	}
	return b.String()
}

// Label is the day's display label, e.g. "15 日".
func (d Day) Label() string {
	return strikeIf(d.Past, fmt.Sprintf("%d 日", d.Day))
}

// Tasks is the day's task block, one "slot: task" line per slot.
func (d Day) Tasks() string {
	if d.Plan == nil {
		return strikeIf(d.Past, NoPlan)
	}
	entries := d.Plan.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Slot+": "+e.Task)
	}
	return strikeIf(d.Past, strings.Join(lines, "\n"))
}

func strikeIf(past bool, s string) string {
	if !past {
		return s
	}
	return strike + s + strike
}
