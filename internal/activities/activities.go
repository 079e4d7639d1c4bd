package activities

import (
	"context"
	"fmt"
	"io"
	"strings"

	"coursetrack/internal/config"
	"coursetrack/internal/providers"
	"coursetrack/internal/storage"
	"coursetrack/internal/util"

	"github.com/ledongthuc/pdf"
)

type Activities struct {
	cfg       config.Config
	docRepo   *storage.DocumentRepo
	matchRepo *storage.MatchRepo
	provider  providers.Provider
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	p, err := providers.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:       cfg,
		docRepo:   storage.NewDocumentRepo(db),
		matchRepo: storage.NewMatchRepo(db),
		provider:  p,
	}, nil
}

// ExtractAssignmentsActivity extracts candidate assignments from one
// uploaded document. Cached extractions are returned without touching the
// PDF or the provider, along with any plans already generated for the same
// fingerprint so the caller can pre-warm its plan cache.
func (a *Activities) ExtractAssignmentsActivity(ctx context.Context, in ExtractAssignmentsInput) (ExtractAssignmentsOutput, error) {
	cached, ok, err := a.docRepo.GetDocument(ctx, in.Fingerprint)
	if err != nil {
		return ExtractAssignmentsOutput{}, err
	}
	if ok {
		plans, err := a.docRepo.GetPlans(ctx, in.Fingerprint)
		if err != nil {
			return ExtractAssignmentsOutput{}, err
		}
		return ExtractAssignmentsOutput{
			Fingerprint: in.Fingerprint,
			Items:       cached.Assignments,
			FromCache:   true,
			CachedPlans: plans,
		}, nil
	}

	f, r, err := pdf.Open(in.DocumentPath)
	if err != nil {
		return ExtractAssignmentsOutput{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return ExtractAssignmentsOutput{}, fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return ExtractAssignmentsOutput{}, fmt.Errorf("read extracted text: %w", err)
	}
	text := util.SanitizeText(strings.TrimSpace(buf.String()))
	if text == "" {
		return ExtractAssignmentsOutput{}, util.ErrNoExtractableText
	}

	items, err := a.provider.ExtractAssignments(ctx, text)
	if err != nil {
		return ExtractAssignmentsOutput{}, fmt.Errorf("extract assignments: %w", err)
	}
	if err := a.docRepo.UpsertDocument(ctx, in.Fingerprint, in.DocumentName, items); err != nil {
		return ExtractAssignmentsOutput{}, err
	}
	return ExtractAssignmentsOutput{Fingerprint: in.Fingerprint, Items: items}, nil
}

// GeneratePlanActivity produces a study plan for one course group, keyed by
// the group's representative fingerprint. A cached plan wins unless the
// caller forces regeneration.
func (a *Activities) GeneratePlanActivity(ctx context.Context, in GeneratePlanInput) (GeneratePlanOutput, error) {
	if !in.ForceRegenerate {
		plan, ok, err := a.docRepo.GetPlan(ctx, in.Fingerprint, in.CourseCode)
		if err != nil {
			return GeneratePlanOutput{}, err
		}
		if ok {
			return GeneratePlanOutput{CourseCode: in.CourseCode, Plan: plan, FromCache: true}, nil
		}
	}

	plan, err := a.provider.GeneratePlan(ctx, in.CourseCode, in.Records)
	if err != nil {
		return GeneratePlanOutput{}, fmt.Errorf("generate plan for %s: %w", in.CourseCode, err)
	}
	if err := a.docRepo.UpsertPlan(ctx, in.Fingerprint, in.CourseCode, plan); err != nil {
		return GeneratePlanOutput{}, err
	}
	return GeneratePlanOutput{CourseCode: in.CourseCode, Plan: plan}, nil
}

// PublishMatchActivity opts a handle in to matching on one fingerprint.
func (a *Activities) PublishMatchActivity(ctx context.Context, in PublishMatchInput) error {
	return a.matchRepo.Publish(ctx, in.Fingerprint, in.Handle, in.AvatarURL)
}

// FetchMatchesActivity lists every opted-in handle on one fingerprint.
func (a *Activities) FetchMatchesActivity(ctx context.Context, in FetchMatchesInput) (FetchMatchesOutput, error) {
	matches, err := a.matchRepo.Fetch(ctx, in.Fingerprint, in.Handle)
	if err != nil {
		return FetchMatchesOutput{}, err
	}
	return FetchMatchesOutput{Matches: matches}, nil
}
