// Package ics serializes export records into an iCalendar file.
package ics

import (
	"time"

	"coursetrack/internal/models"

	ical "github.com/arran4/golang-ical"
)

const prodID = "-//Course Track//Assignment Extractor//EN"

// Serialize renders export records as a VCALENDAR of all-day events under
// the given calendar name. Records without a due date or with a date that
// does not parse are skipped. Due dates are shifted forward one day so
// calendar clients render the all-day event on the due date itself.
func Serialize(records []models.ExportRecord, calendarName string) (string, error) {
	cal := ical.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetVersion("2.0")
	cal.SetXWRCalName(calendarName)
	cal.SetXWRTimezone("UTC")

	now := time.Now().UTC()
	for _, rec := range records {
		if rec.DueDate == nil || *rec.DueDate == "" {
			continue
		}
		due, err := time.Parse("2006-01-02", *rec.DueDate)
		if err != nil {
			continue
		}
		due = due.AddDate(0, 0, 1)

		ev := cal.AddEvent(rec.Title + "-" + *rec.DueDate + "@coursetrack")
		ev.SetSummary(rec.Title)
		ev.SetDescription("Assignment due: " + rec.Title)
		ev.SetAllDayStartAt(due)
		ev.SetAllDayEndAt(due)
		ev.SetDtStampTime(now)
		ev.SetStatus(ical.ObjectStatusConfirmed)
		ev.SetProperty(ical.ComponentPropertyCategories, "Assignment")
	}
	return cal.Serialize(), nil
}
