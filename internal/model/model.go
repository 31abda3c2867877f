package model

import "fmt"

const (
	// NoTask is the placeholder every slot holds right after a day is created.
	NoTask = "無任務"

	// DoneMarker is prepended to a slot's task when it is completed.
	DoneMarker = "✅ "

	// DateLayout is the layout of Schedule keys (YYYY-MM-DD).
	DateLayout = "2006-01-02"
)

// Slot generation rule. Every slot label in the system is produced from these
// three numbers, so validation and time mapping cannot drift apart.
const (
	firstSlotHour = 8
	lastSlotHour  = 24
	slotHours     = 2
)

// Slot is one fixed two-hour block of a day.
type Slot struct {
	Label     string
	StartHour int
	EndHour   int
}

// Slots returns the fixed slot set in ascending-hour order:
// "8-10時", "10-12時", ..., "22-24時".
func Slots() []Slot {
	out := make([]Slot, 0, (lastSlotHour-firstSlotHour)/slotHours)
	for h := firstSlotHour; h < lastSlotHour; h += slotHours {
		out = append(out, Slot{
			Label:     fmt.Sprintf("%d-%d時", h, h+slotHours),
			StartHour: h,
			EndHour:   h + slotHours,
		})
	}
	return out
}

// SlotLabels returns just the labels of Slots, in order.
func SlotLabels() []string {
	slots := Slots()
	labels := make([]string, len(slots))
	for i, s := range slots {
		labels[i] = s.Label
	}
	return labels
}

// LookupSlot resolves a label against the fixed slot set.
func LookupSlot(label string) (Slot, bool) {
	for _, s := range Slots() {
		if s.Label == label {
			return s, true
		}
	}
	return Slot{}, false
}

// Entry is one (slot label, task) pair of a DayPlan.
type Entry struct {
	Slot string
	Task string
}

// DayPlan maps slot labels to task text and remembers insertion order.
//
// A DayPlan read from disk keeps whatever keys the file contained; only
// NewDayPlan guarantees the fixed slot set.
type DayPlan struct {
	labels []string
	tasks  map[string]string
}

// NewDayPlan returns a plan holding every slot of Slots set to NoTask.
func NewDayPlan() *DayPlan {
	d := &DayPlan{}
	for _, label := range SlotLabels() {
		d.Set(label, NoTask)
	}
	return d
}

// Get returns the task stored under label.
func (d *DayPlan) Get(label string) (string, bool) {
	if d == nil || d.tasks == nil {
		return "", false
	}
	task, ok := d.tasks[label]
	return task, ok
}

// Has reports whether label is a key of this plan.
func (d *DayPlan) Has(label string) bool {
	_, ok := d.Get(label)
	return ok
}

// Set stores task under label. New labels are appended at the end.
func (d *DayPlan) Set(label, task string) {
	if d.tasks == nil {
		d.tasks = make(map[string]string)
	}
	if _, ok := d.tasks[label]; !ok {
		d.labels = append(d.labels, label)
	}
	d.tasks[label] = task
}

// Labels returns the slot labels in stored order.
func (d *DayPlan) Labels() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.labels...)
}

// Entries returns the (slot, task) pairs in stored order.
func (d *DayPlan) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, 0, len(d.labels))
	for _, label := range d.labels {
		out = append(out, Entry{Slot: label, Task: d.tasks[label]})
	}
	return out
}

// Len is the number of slots in the plan.
func (d *DayPlan) Len() int {
	if d == nil {
		return 0
	}
	return len(d.labels)
}

// Clone returns a deep copy.
func (d *DayPlan) Clone() *DayPlan {
	c := &DayPlan{}
	for _, e := range d.Entries() {
		c.Set(e.Slot, e.Task)
	}
	return c
}

// Schedule is the whole persisted date -> DayPlan mapping, in insertion order.
type Schedule struct {
	dates []string
	days  map[string]*DayPlan
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{days: make(map[string]*DayPlan)}
}

// Day returns the plan stored for date.
func (s *Schedule) Day(date string) (*DayPlan, bool) {
	if s == nil || s.days == nil {
		return nil, false
	}
	d, ok := s.days[date]
	return d, ok
}

// Has reports whether date has been initialized.
func (s *Schedule) Has(date string) bool {
	_, ok := s.Day(date)
	return ok
}

// Put stores plan under date. New dates are appended at the end.
func (s *Schedule) Put(date string, plan *DayPlan) {
	if s.days == nil {
		s.days = make(map[string]*DayPlan)
	}
	if _, ok := s.days[date]; !ok {
		s.dates = append(s.dates, date)
	}
	s.days[date] = plan
}

// Dates returns the date keys in stored order.
func (s *Schedule) Dates() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.dates...)
}

// Len is the number of days in the schedule.
func (s *Schedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dates)
}

// Clone returns a deep copy.
func (s *Schedule) Clone() *Schedule {
	c := NewSchedule()
	if s == nil {
		return c
	}
	for _, date := range s.dates {
		c.Put(date, s.days[date].Clone())
	}
	return c
}
