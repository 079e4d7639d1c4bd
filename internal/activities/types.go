package activities

import "coursetrack/internal/models"

type ExtractAssignmentsInput struct {
	DocumentName string `json:"document_name"`
	DocumentPath string `json:"document_path"`
	Fingerprint  string `json:"fingerprint"`
}

type ExtractAssignmentsOutput struct {
	Fingerprint string                      `json:"fingerprint"`
	Items       []models.ExtractedItem      `json:"items"`
	FromCache   bool                        `json:"from_cache"`
	CachedPlans map[string]models.StudyPlan `json:"cached_plans,omitempty"`
}

type GeneratePlanInput struct {
	CourseCode      string                   `json:"course_code"`
	Fingerprint     string                   `json:"fingerprint"`
	Records         []models.CommittedRecord `json:"records"`
	ForceRegenerate bool                     `json:"force_regenerate"`
}

type GeneratePlanOutput struct {
	CourseCode string           `json:"course_code"`
	Plan       models.StudyPlan `json:"plan"`
	FromCache  bool             `json:"from_cache"`
}

type PublishMatchInput struct {
	Fingerprint string `json:"fingerprint"`
	Handle      string `json:"handle"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type FetchMatchesInput struct {
	Fingerprint string `json:"fingerprint"`
	Handle      string `json:"handle"`
}

type FetchMatchesOutput struct {
	Matches []models.MatchEntry `json:"matches"`
}
