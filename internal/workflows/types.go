package workflows

import "coursetrack/internal/models"

type DocumentRef struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

type BatchExtractInput struct {
	SessionID string        `json:"session_id"`
	Documents []DocumentRef `json:"documents"`
}

type DocumentResult struct {
	DocumentName string                      `json:"document_name"`
	Fingerprint  string                      `json:"fingerprint"`
	Items        []models.ExtractedItem      `json:"items"`
	FromCache    bool                        `json:"from_cache"`
	CachedPlans  map[string]models.StudyPlan `json:"cached_plans,omitempty"`
}

// BatchExtractOutput carries whatever completed before the first failure.
// FailedDocument is empty on full success.
type BatchExtractOutput struct {
	Results        []DocumentResult `json:"results"`
	FailedDocument string           `json:"failed_document,omitempty"`
	FailureReason  string           `json:"failure_reason,omitempty"`
}

type BatchExtractProgress struct {
	Total   int    `json:"total"`
	Done    int    `json:"done"`
	Current string `json:"current,omitempty"`
}

type StudyPlanInput struct {
	SessionID       string               `json:"session_id"`
	Groups          []models.CourseGroup `json:"groups"`
	CachedCourses   []string             `json:"cached_courses,omitempty"`
	ForceRegenerate bool                 `json:"force_regenerate"`
}

// StudyPlanOutput carries every plan generated before the first failure.
// FailedCourse is empty on full success.
type StudyPlanOutput struct {
	Plans         map[string]models.StudyPlan `json:"plans"`
	FailedCourse  string                      `json:"failed_course,omitempty"`
	FailureReason string                      `json:"failure_reason,omitempty"`
}

type StudyPlanProgress struct {
	Total   int    `json:"total"`
	Done    int    `json:"done"`
	Current string `json:"current,omitempty"`
}

type MatchDocument struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
}

type SocialMatchInput struct {
	SessionID string          `json:"session_id"`
	Documents []MatchDocument `json:"documents"`
	Handle    string          `json:"handle"`
	AvatarURL string          `json:"avatar_url,omitempty"`
}

// SocialMatchOutput maps document name to its matches. A document whose
// lookup failed maps to an empty list.
type SocialMatchOutput struct {
	Matches map[string][]models.MatchEntry `json:"matches"`
}
