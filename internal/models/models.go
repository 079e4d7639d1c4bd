package models

import "time"

// Event types accepted from the extraction service and for user overrides.
const (
	TypeAssignment   = "assignment"
	TypeTest         = "test"
	TypeQuiz         = "quiz"
	TypeExam         = "exam"
	TypeProject      = "project"
	TypePresentation = "presentation"
	TypeOther        = "other"
)

var EventTypes = map[string]bool{
	TypeAssignment:   true,
	TypeTest:         true,
	TypeQuiz:         true,
	TypeExam:         true,
	TypeProject:      true,
	TypePresentation: true,
	TypeOther:        true,
}

// ExtractedItem is one candidate assignment as returned by the extraction
// service, before the aggregator assigns identity.
type ExtractedItem struct {
	Title         string  `json:"title"`
	DueDate       *string `json:"due_date"`
	Type          string  `json:"type"`
	Accuracy      float64 `json:"accuracy"`
	IsLowAccuracy bool    `json:"is_low_accuracy"`
}

// ExtractedRecord is an ExtractedItem owned by the aggregator: it carries a
// stable identifier and the identity of the document it came from.
type ExtractedRecord struct {
	StableID       int     `json:"stable_id"`
	Title          string  `json:"title"`
	DueDate        *string `json:"due_date"`
	Type           string  `json:"type"`
	Accuracy       float64 `json:"accuracy"`
	LowConfidence  bool    `json:"low_confidence"`
	SourceDocument string  `json:"source_document"`
	Fingerprint    string  `json:"fingerprint,omitempty"`

	Included bool            `json:"included"`
	Override *RecordOverride `json:"override,omitempty"`
}

// RecordOverride carries user edits to a record. Nil fields are untouched.
// Accuracy and fingerprint are never overridable.
type RecordOverride struct {
	Title    *string `json:"title,omitempty"`
	DueDate  *string `json:"due_date,omitempty"`
	Type     *string `json:"type,omitempty"`
	Included *bool   `json:"included,omitempty"`
}

// CommittedRecord is a record that passed selection, with overrides resolved.
type CommittedRecord struct {
	StableID       int     `json:"stable_id"`
	Title          string  `json:"title"`
	DueDate        *string `json:"due_date"`
	Type           string  `json:"type"`
	Accuracy       float64 `json:"accuracy"`
	LowConfidence  bool    `json:"low_confidence"`
	SourceDocument string  `json:"source_document"`
	Fingerprint    string  `json:"fingerprint,omitempty"`
}

// ExportRecord is what gets handed to the calendar serializer.
type ExportRecord struct {
	Title   string  `json:"title"`
	DueDate *string `json:"due_date"`
	Type    string  `json:"type"`
}

// StudyPlan is an opaque payload from the generation service; the
// coordinator only checks presence, never contents.
type StudyPlan struct {
	Overview                string   `json:"overview"`
	WeeklySchedule          []string `json:"weekly_schedule"`
	StudyTips               []string `json:"study_tips"`
	ResourceRecommendations string   `json:"resource_recommendations"`
}

// CourseGroup is an ordered slice of committed records sharing a resolved
// course code. Fingerprint is the representative fingerprint: the one of
// the record that created the group, used as the generation cache key.
type CourseGroup struct {
	CourseCode  string            `json:"course_code"`
	Fingerprint string            `json:"fingerprint"`
	Records     []CommittedRecord `json:"records"`
}

// MatchEntry is one opted-in handle published against a document fingerprint.
type MatchEntry struct {
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsSelf    bool   `json:"is_self"`
}

// SyllabusDocument is the server-side cache row for one uploaded document,
// keyed by content fingerprint.
type SyllabusDocument struct {
	Fingerprint string          `json:"fingerprint"`
	Filename    string          `json:"filename"`
	Assignments []ExtractedItem `json:"assignments"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
