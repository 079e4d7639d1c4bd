// Package export prepares committed records for calendar serialization.
package export

import (
	"coursetrack/internal/course"
	"coursetrack/internal/models"
)

// Prepare maps committed records to export records, prefixing each title
// with the resolved course code ("CS 101 - Lab 1"). Titles whose source
// document does not resolve are left unchanged. Pure transform, applied
// once immediately before handing records to the serializer.
func Prepare(records []models.CommittedRecord) []models.ExportRecord {
	out := make([]models.ExportRecord, 0, len(records))
	for _, rec := range records {
		title := rec.Title
		if code, ok := course.Resolve(rec.SourceDocument); ok {
			title = code + " - " + title
		}
		out = append(out, models.ExportRecord{
			Title:   title,
			DueDate: rec.DueDate,
			Type:    rec.Type,
		})
	}
	return out
}
