package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coursetrack/internal/models"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterProvider does assignment extraction and study-plan generation
// through OpenRouter's chat-completions API.
type OpenRouterProvider struct {
	apiKey string
	model  string
	client *http.Client
}

func NewOpenRouterProvider(apiKey, model string) *OpenRouterProvider {
	if strings.TrimSpace(model) == "" {
		model = "google/gemini-pro"
	}
	return &OpenRouterProvider{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

const extractSystemPrompt = `You are an assignment extraction service.

CRITICAL REQUIREMENTS:
- Output MUST be a raw JSON array.
- Do NOT wrap in markdown.
- Do NOT include explanation.
- Do NOT include code fences.
- Do NOT include text before or after JSON.

Required format:

[
  {
    "title": string,
    "due_date": string (YYYY-MM-DD) or null,
    "type": string,
    "accuracy": number
  }
]

"type" must be one of:
assignment, test, quiz, exam, project, presentation, other

Rules:
- Dates must be normalized to YYYY-MM-DD.
- If date cannot be determined, use null.
- "accuracy" is confidence from 0 to 100 for that specific entry.
- Do not include extra fields beyond title, due_date, type, accuracy.
- Return [] if nothing found.`

const planSystemPrompt = `You are a helpful academic advisor creating personalized study plans.

CRITICAL REQUIREMENTS:
- Output MUST be a raw JSON object (not wrapped in markdown or code blocks).
- Do NOT include explanation text before or after JSON.
- Do NOT include code fences.

Required format:

{
  "overview": string (brief description of the course study approach),
  "weekly_schedule": [string, string, ...] (array of 4-8 weekly recommendations),
  "study_tips": [string, string, ...] (array of 5-8 practical tips),
  "resource_recommendations": string (recommended resources and tools)
}

Be practical and specific. Base recommendations on the actual assignments provided.`

func (p *OpenRouterProvider) ExtractAssignments(ctx context.Context, text string) ([]models.ExtractedItem, error) {
	user := "Extract all course events (assignments, tests, quizzes, exams, projects, presentations, deadlines).\n\n" +
		"Normalize all dates to YYYY-MM-DD.\n\nText:\n" + text
	content, err := p.chat(ctx, extractSystemPrompt, user, 0, 1000)
	if err != nil {
		return nil, err
	}
	return parseAssignmentsJSON(content)
}

func (p *OpenRouterProvider) GeneratePlan(ctx context.Context, courseCode string, records []models.CommittedRecord) (models.StudyPlan, error) {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		due := "TBD"
		if rec.DueDate != nil {
			due = *rec.DueDate
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): Due %s", rec.Title, rec.Type, due))
	}
	user := "Create a personalized study plan for " + courseCode + " based on these assignments:\n\n" +
		strings.Join(lines, "\n") +
		"\n\nGenerate practical, actionable guidance that helps the student succeed in this course."
	content, err := p.chat(ctx, planSystemPrompt, user, 0.7, 2000)
	if err != nil {
		return models.StudyPlan{}, err
	}
	return parsePlanJSON(content)
}

func (p *OpenRouterProvider) chat(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("openrouter api key is not configured")
	}
	payload, _ := json.Marshal(map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": temperature,
		"max_tokens":  maxTokens,
	})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, openRouterURL, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "Course Track")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openrouter error %d: %s", resp.StatusCode, truncate(string(body), 300))
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode openrouter response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
