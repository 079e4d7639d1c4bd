package providers

import (
	"context"
	"fmt"
	"strings"

	"coursetrack/internal/models"
)

// MockProvider returns deterministic output for tests and local smoke runs.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) ExtractAssignments(ctx context.Context, text string) ([]models.ExtractedItem, error) {
	_ = ctx
	due := "2026-10-01"
	items := []models.ExtractedItem{
		{Title: "Mock Assignment 1", DueDate: &due, Type: models.TypeAssignment, Accuracy: 95},
	}
	if strings.Contains(strings.ToLower(text), "exam") {
		examDue := "2026-12-10"
		items = append(items, models.ExtractedItem{Title: "Mock Final Exam", DueDate: &examDue, Type: models.TypeExam, Accuracy: 70})
	}
	return items, nil
}

func (m *MockProvider) GeneratePlan(ctx context.Context, courseCode string, records []models.CommittedRecord) (models.StudyPlan, error) {
	_ = ctx
	return models.StudyPlan{
		Overview:                fmt.Sprintf("Deterministic mock plan for %s covering %d assignments.", courseCode, len(records)),
		WeeklySchedule:          []string{"Week 1: review", "Week 2: practice"},
		StudyTips:               []string{"Start early", "Review often"},
		ResourceRecommendations: "Mock resources only; configure a real provider for semantic quality.",
	}, nil
}
