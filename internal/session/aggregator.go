package session

import (
	"fmt"
	"strings"
	"time"

	"coursetrack/internal/course"
	"coursetrack/internal/models"
	"coursetrack/internal/util"
)

// Aggregator owns the growing, ordered collection of extracted records
// across a multi-document batch. Records are append-only: records from a
// later document always sort after every record of earlier documents, and
// there is no global re-sort. Stable ids are monotonic and never reused,
// even when a record is later excluded; only Reset returns the counter
// to zero.
type Aggregator struct {
	nextID  int
	records []models.ExtractedRecord
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Ingest appends one document's extraction result, assigning each record
// the next stable id and tagging it with the document name and content
// fingerprint. The low-confidence flag is computed here and carried
// through unchanged by every later stage.
func (a *Aggregator) Ingest(documentName, fingerprint string, items []models.ExtractedItem) []models.ExtractedRecord {
	added := make([]models.ExtractedRecord, 0, len(items))
	for _, item := range items {
		rec := models.ExtractedRecord{
			StableID:       a.nextID,
			Title:          item.Title,
			DueDate:        item.DueDate,
			Type:           item.Type,
			Accuracy:       item.Accuracy,
			LowConfidence:  course.IsLowConfidence(item.Accuracy, item.IsLowAccuracy),
			SourceDocument: documentName,
			Fingerprint:    fingerprint,
			Included:       true,
		}
		a.nextID++
		a.records = append(a.records, rec)
		added = append(added, rec)
	}
	return added
}

// ApplyOverride patches only the fields present in the override. An unknown
// id is an error surfaced to the caller, never a silent no-op. Due dates
// must be ISO dates and types must be in the event-type enum; accuracy and
// fingerprint are never overridable.
func (a *Aggregator) ApplyOverride(stableID int, o models.RecordOverride) error {
	idx := -1
	for i := range a.records {
		if a.records[i].StableID == stableID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %d", util.ErrUnknownRecord, stableID)
	}
	if o.DueDate != nil && *o.DueDate != "" {
		if _, err := time.Parse("2006-01-02", *o.DueDate); err != nil {
			return fmt.Errorf("%w: %q", util.ErrInvalidDueDate, *o.DueDate)
		}
	}
	if o.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*o.Type))
		if !models.EventTypes[t] {
			return fmt.Errorf("%w: %q", util.ErrInvalidEventType, *o.Type)
		}
		o.Type = &t
	}

	rec := &a.records[idx]
	if rec.Override == nil {
		rec.Override = &models.RecordOverride{}
	}
	if o.Title != nil {
		rec.Override.Title = o.Title
	}
	if o.DueDate != nil {
		rec.Override.DueDate = o.DueDate
	}
	if o.Type != nil {
		rec.Override.Type = o.Type
	}
	if o.Included != nil {
		rec.Included = *o.Included
	}
	return nil
}

// Records returns the full aggregate view, including excluded records.
func (a *Aggregator) Records() []models.ExtractedRecord {
	out := make([]models.ExtractedRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Commit returns the ordered sequence of included records with overrides
// resolved. Accuracy, confidence and fingerprint carry through unchanged.
func (a *Aggregator) Commit() []models.CommittedRecord {
	out := make([]models.CommittedRecord, 0, len(a.records))
	for _, rec := range a.records {
		if !rec.Included {
			continue
		}
		c := models.CommittedRecord{
			StableID:       rec.StableID,
			Title:          rec.Title,
			DueDate:        rec.DueDate,
			Type:           rec.Type,
			Accuracy:       rec.Accuracy,
			LowConfidence:  rec.LowConfidence,
			SourceDocument: rec.SourceDocument,
			Fingerprint:    rec.Fingerprint,
		}
		if o := rec.Override; o != nil {
			if o.Title != nil {
				c.Title = *o.Title
			}
			if o.DueDate != nil {
				if *o.DueDate == "" {
					c.DueDate = nil
				} else {
					c.DueDate = o.DueDate
				}
			}
			if o.Type != nil {
				c.Type = *o.Type
			}
		}
		out = append(out, c)
	}
	return out
}

// Reset clears all records and returns the id counter to zero.
func (a *Aggregator) Reset() {
	a.nextID = 0
	a.records = nil
}
