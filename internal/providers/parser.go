package providers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"coursetrack/internal/models"
)

// rawItem tolerates the loose shapes models return: accuracy may be a
// number or a string (optionally "%"-suffixed), fields may be missing.
type rawItem struct {
	Title         string          `json:"title"`
	DueDate       *string         `json:"due_date"`
	Type          string          `json:"type"`
	Accuracy      json.RawMessage `json:"accuracy"`
	IsLowAccuracy bool            `json:"is_low_accuracy"`
}

// parseAssignmentsJSON decodes a JSON array of assignments, salvaging the
// array from surrounding prose or markdown fences if strict decoding fails.
func parseAssignmentsJSON(content string) ([]models.ExtractedItem, error) {
	var raw []rawItem
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		start := strings.Index(content, "[")
		end := strings.LastIndex(content, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("model did not return a JSON array: %s", truncate(content, 200))
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
			return nil, fmt.Errorf("parse assignments from model output: %w", err)
		}
	}
	return normalizeItems(raw), nil
}

// parsePlanJSON decodes a study plan object with the same salvage behavior.
func parsePlanJSON(content string) (models.StudyPlan, error) {
	var plan models.StudyPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return models.StudyPlan{}, fmt.Errorf("model did not return a JSON object: %s", truncate(content, 200))
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &plan); err != nil {
			return models.StudyPlan{}, fmt.Errorf("parse study plan from model output: %w", err)
		}
	}
	return plan, nil
}

func normalizeItems(raw []rawItem) []models.ExtractedItem {
	out := make([]models.ExtractedItem, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "Untitled"
		}
		typ := strings.ToLower(strings.TrimSpace(r.Type))
		if typ == "" {
			typ = models.TypeAssignment
		}
		if !models.EventTypes[typ] {
			typ = models.TypeOther
		}
		var due *string
		if r.DueDate != nil && strings.TrimSpace(*r.DueDate) != "" {
			d := strings.TrimSpace(*r.DueDate)
			due = &d
		}
		acc := parseAccuracy(r.Accuracy)
		out = append(out, models.ExtractedItem{
			Title:         title,
			DueDate:       due,
			Type:          typ,
			Accuracy:      acc,
			IsLowAccuracy: r.IsLowAccuracy,
		})
	}
	return out
}

// parseAccuracy accepts a number or a string like "85%" and clamps to
// [0,100], rounded to two decimals. Anything unparseable defaults to 100.
func parseAccuracy(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 100
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 100
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if s == "" {
			return 100
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 100
		}
		n = v
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return math.Round(n*100) / 100
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
