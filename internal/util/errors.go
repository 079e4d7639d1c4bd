package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")

	ErrUnknownRecord      = errors.New("unknown record id")
	ErrInvalidEventType   = errors.New("invalid event type")
	ErrInvalidDueDate     = errors.New("invalid due date, expected YYYY-MM-DD")
	ErrNoIncludedRecords  = errors.New("no included records to export")
	ErrNoCommittedRecords = errors.New("no committed records to generate plans for")
	ErrOptInRequired      = errors.New("opt-in required")
)
