package providers

import (
	"context"

	"coursetrack/internal/models"
)

// Extractor turns raw syllabus text into candidate assignment records.
// Output is accepted as given; only the accuracy score is interpreted
// downstream.
type Extractor interface {
	ExtractAssignments(ctx context.Context, text string) ([]models.ExtractedItem, error)
}

// PlanGenerator produces a study plan for one course group. The request is
// keyed by the group's representative fingerprint at the activity layer;
// the generator itself only sees the course and its records.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, courseCode string, records []models.CommittedRecord) (models.StudyPlan, error)
}

// Provider bundles both services; every implementation here supports both.
type Provider interface {
	Extractor
	PlanGenerator
}
