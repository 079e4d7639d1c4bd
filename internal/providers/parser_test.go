package providers

import "testing"

func TestParseAssignmentsJSONStrict(t *testing.T) {
	items, err := parseAssignmentsJSON(`[{"title":"Lab 1","due_date":"2026-10-01","type":"assignment","accuracy":92}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Title != "Lab 1" || items[0].Accuracy != 92 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestParseAssignmentsJSONSalvagesFromFences(t *testing.T) {
	content := "Here you go:\n```json\n[{\"title\":\"Quiz\",\"due_date\":null,\"type\":\"quiz\",\"accuracy\":\"85%\"}]\n```"
	items, err := parseAssignmentsJSON(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Accuracy != 85 || items[0].DueDate != nil {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestParseAssignmentsJSONRejectsProse(t *testing.T) {
	if _, err := parseAssignmentsJSON("I could not find any assignments."); err == nil {
		t.Fatal("expected an error for non-JSON output")
	}
}

func TestNormalizeItemsDefaults(t *testing.T) {
	items, err := parseAssignmentsJSON(`[{"title":"  ","type":"HOMEWORK","accuracy":150},{"title":"x","type":"Exam","accuracy":-5}]`)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Title != "Untitled" || items[0].Type != "other" || items[0].Accuracy != 100 {
		t.Fatalf("unexpected normalization: %+v", items[0])
	}
	if items[1].Type != "exam" || items[1].Accuracy != 0 {
		t.Fatalf("unexpected normalization: %+v", items[1])
	}
}

func TestParsePlanJSONSalvage(t *testing.T) {
	content := "```\n{\"overview\":\"o\",\"weekly_schedule\":[\"w1\"],\"study_tips\":[\"t1\"],\"resource_recommendations\":\"r\"}\n```"
	plan, err := parsePlanJSON(content)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Overview != "o" || len(plan.WeeklySchedule) != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}
