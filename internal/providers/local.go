package providers

import (
	"context"
	"regexp"
	"strings"
	"time"

	"coursetrack/internal/models"
)

// LocalProvider is the offline fallback: a line-based regex parser for
// extraction and a fixed-template study plan. It keeps the service usable
// without an API key, at the cost of extraction quality.
type LocalProvider struct {
	now func() time.Time
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{now: time.Now}
}

var (
	eventLine   = regexp.MustCompile(`(?i)(.+?)\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+\d{1,2}`)
	dateInLine  = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\w*\s+\d{1,2}`)
	ordinalDays = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)
)

func (p *LocalProvider) ExtractAssignments(ctx context.Context, text string) ([]models.ExtractedItem, error) {
	_ = ctx
	year := p.now().Year()
	items := make([]models.ExtractedItem, 0)
	for _, line := range strings.Split(text, "\n") {
		m := eventLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		dateStr := dateInLine.FindString(line)
		due, ok := parseFlexibleDate(dateStr, year)
		if !ok {
			continue
		}
		items = append(items, models.ExtractedItem{
			Title:    strings.TrimSpace(m[1]),
			DueDate:  &due,
			Type:     models.TypeAssignment,
			Accuracy: 100,
		})
	}
	return items, nil
}

func (p *LocalProvider) GeneratePlan(ctx context.Context, courseCode string, records []models.CommittedRecord) (models.StudyPlan, error) {
	_ = ctx
	_ = records
	return models.StudyPlan{
		Overview: "Study plan for " + courseCode,
		WeeklySchedule: []string{
			"Review syllabus and course materials",
			"Complete assigned readings",
			"Work on assignments and projects",
			"Prepare for exams and quizzes",
		},
		StudyTips: []string{
			"Start assignments early to avoid last-minute rush",
			"Form a study group with classmates",
			"Review notes regularly, not just before the exam",
			"Attend office hours if you need clarification",
			"Take care of your physical and mental health",
		},
		ResourceRecommendations: "Take advantage of tutoring services, online resources, and library materials available at your institution.",
	}, nil
}

// parseFlexibleDate parses "Oct 3" / "October 3rd" style dates, truncating
// the month to its three-letter form and assuming the given year.
func parseFlexibleDate(dateStr string, year int) (string, bool) {
	dateStr = ordinalDays.ReplaceAllString(strings.TrimSpace(dateStr), "$1")
	fields := strings.Fields(dateStr)
	if len(fields) != 2 {
		return "", false
	}
	month := fields[0]
	if len(month) > 3 {
		month = month[:3]
	}
	month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:])
	t, err := time.Parse("Jan 2", month+" "+fields[1])
	if err != nil {
		return "", false
	}
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Format("2006-01-02"), true
}
