// Package ics exports the schedule as an iCalendar feed so plans can be
// subscribed to from a regular calendar client.
package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "plancal/internal/log"
	"plancal/internal/model"
)

const productID = "-//plancal//daily plans//ZH-TW"

// Export renders every slot that holds a task as a VEVENT. Slot hours are
// interpreted in loc; now is used as DTSTAMP. Days whose key is not a valid
// date and slots outside the fixed slot set are skipped.
func Export(s *model.Schedule, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName("plancal")
	cal.SetXWRTimezone(loc.String())

	count := 0
	for _, date := range s.Dates() {
		day, _ := s.Day(date)
		d, err := time.ParseInLocation(model.DateLayout, date, loc)
		if err != nil {
			appLog.Warn("ics export: skipping day with invalid date", "date", date)
			continue
		}
		for _, e := range day.Entries() {
			if e.Task == model.NoTask {
				continue
			}
			slot, ok := model.LookupSlot(e.Slot)
			if !ok {
				appLog.Warn("ics export: skipping unknown slot", "date", date, "slot", e.Slot)
				continue
			}

			summary, done := stripDone(e.Task)
			ev := cal.AddEvent(EventUID(date, e.Slot))
			ev.SetDtStampTime(now.UTC())
			ev.SetStartAt(slotTime(d, slot.StartHour))
			ev.SetEndAt(slotTime(d, slot.EndHour))
			ev.SetSummary(summary)
			if done {
				ev.SetStatus(ical.ObjectStatusCompleted)
			} else {
				ev.SetStatus(ical.ObjectStatusConfirmed)
			}
			count++
		}
	}

	appLog.Debug("ics export completed", "days", s.Len(), "event_count", count)
	return cal.Serialize()
}

// slotTime is the wall-clock hour h of day d in d's location. Hour 24 is
// midnight of the next day.
func slotTime(d time.Time, h int) time.Time {
	if h >= 24 {
		d = d.AddDate(0, 0, h/24)
		h %= 24
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, 0, 0, 0, d.Location())
}

// EventUID is stable for a (date, slot) pair across exports.
func EventUID(date, slot string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(date+"/"+slot)).String() + "@plancal"
}

// stripDone removes every leading done marker. done reports whether there
// was at least one.
func stripDone(task string) (summary string, done bool) {
	for strings.HasPrefix(task, model.DoneMarker) {
		task = strings.TrimPrefix(task, model.DoneMarker)
		done = true
	}
	return task, done
}
