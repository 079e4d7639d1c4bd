package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coursetrack/internal/models"

	"github.com/jackc/pgx/v5"
)

// DocumentRepo caches extraction results and generated study plans by
// document content fingerprint. The cache outlives sessions on purpose:
// two users uploading byte-identical syllabi share one extraction and
// one set of plans.
type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetDocument returns the cached extraction for a fingerprint, or ok=false.
func (r *DocumentRepo) GetDocument(ctx context.Context, fingerprint string) (models.SyllabusDocument, bool, error) {
	var doc models.SyllabusDocument
	var assignments []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT fingerprint, filename, assignments, created_at, updated_at
FROM syllabus_documents
WHERE fingerprint=$1`, fingerprint).
		Scan(&doc.Fingerprint, &doc.Filename, &assignments, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SyllabusDocument{}, false, nil
	}
	if err != nil {
		return models.SyllabusDocument{}, false, fmt.Errorf("get document: %w", err)
	}
	if err := json.Unmarshal(assignments, &doc.Assignments); err != nil {
		return models.SyllabusDocument{}, false, fmt.Errorf("decode cached assignments: %w", err)
	}
	return doc, true, nil
}

// UpsertDocument stores an extraction result. Concurrent inserts for the
// same fingerprint are harmless: last write wins and both carry the same
// content-derived payload.
func (r *DocumentRepo) UpsertDocument(ctx context.Context, fingerprint, filename string, assignments []models.ExtractedItem) error {
	payload, err := json.Marshal(assignments)
	if err != nil {
		return fmt.Errorf("encode assignments: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO syllabus_documents (fingerprint, filename, assignments)
VALUES ($1, $2, $3)
ON CONFLICT (fingerprint)
DO UPDATE SET filename = EXCLUDED.filename, assignments = EXCLUDED.assignments, updated_at = NOW()`,
		fingerprint, filename, payload)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// GetPlans returns every cached plan for a fingerprint keyed by course code.
func (r *DocumentRepo) GetPlans(ctx context.Context, fingerprint string) (map[string]models.StudyPlan, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT course_code, plan
FROM study_plans
WHERE fingerprint=$1`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	out := map[string]models.StudyPlan{}
	for rows.Next() {
		var code string
		var raw []byte
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		var plan models.StudyPlan
		if err := json.Unmarshal(raw, &plan); err != nil {
			return nil, fmt.Errorf("decode plan for %s: %w", code, err)
		}
		out[code] = plan
	}
	return out, rows.Err()
}

// GetPlan returns one cached plan, or ok=false.
func (r *DocumentRepo) GetPlan(ctx context.Context, fingerprint, courseCode string) (models.StudyPlan, bool, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(ctx, `
SELECT plan FROM study_plans WHERE fingerprint=$1 AND course_code=$2`, fingerprint, courseCode).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StudyPlan{}, false, nil
	}
	if err != nil {
		return models.StudyPlan{}, false, fmt.Errorf("get plan: %w", err)
	}
	var plan models.StudyPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return models.StudyPlan{}, false, fmt.Errorf("decode plan: %w", err)
	}
	return plan, true, nil
}

// UpsertPlan stores a generated plan under (fingerprint, course code).
func (r *DocumentRepo) UpsertPlan(ctx context.Context, fingerprint, courseCode string, plan models.StudyPlan) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO study_plans (fingerprint, course_code, plan)
VALUES ($1, $2, $3)
ON CONFLICT (fingerprint, course_code)
DO UPDATE SET plan = EXCLUDED.plan, updated_at = NOW()`,
		fingerprint, courseCode, raw)
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}
