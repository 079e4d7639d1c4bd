package workflows

import (
	"time"

	"coursetrack/internal/activities"
	"coursetrack/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetBatchProgress = "GetBatchProgress"
	QueryGetPlanProgress  = "GetPlanProgress"
)

// Activities run exactly once: extraction and generation are expensive
// remote calls and a failed document or course is surfaced to the user
// instead of retried behind their back.
func activityOptions(timeout time.Duration) workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
}

// BatchExtractWorkflow extracts assignments from documents in upload
// order. The first failure stops the batch; results from documents that
// already completed are kept and returned alongside the failure.
func BatchExtractWorkflow(ctx workflow.Context, input BatchExtractInput) (BatchExtractOutput, error) {
	progress := BatchExtractProgress{Total: len(input.Documents)}
	if err := workflow.SetQueryHandler(ctx, QueryGetBatchProgress, func() (BatchExtractProgress, error) {
		return progress, nil
	}); err != nil {
		return BatchExtractOutput{}, err
	}

	ctx = workflow.WithActivityOptions(ctx, activityOptions(5*time.Minute))
	out := BatchExtractOutput{Results: make([]DocumentResult, 0, len(input.Documents))}

	for _, doc := range input.Documents {
		progress.Current = doc.Name
		var res activities.ExtractAssignmentsOutput
		err := workflow.ExecuteActivity(ctx, "ExtractAssignmentsActivity", activities.ExtractAssignmentsInput{
			DocumentName: doc.Name,
			DocumentPath: doc.Path,
			Fingerprint:  doc.Fingerprint,
		}).Get(ctx, &res)
		if err != nil {
			out.FailedDocument = doc.Name
			out.FailureReason = err.Error()
			progress.Current = ""
			return out, nil
		}
		out.Results = append(out.Results, DocumentResult{
			DocumentName: doc.Name,
			Fingerprint:  doc.Fingerprint,
			Items:        res.Items,
			FromCache:    res.FromCache,
			CachedPlans:  res.CachedPlans,
		})
		progress.Done++
	}
	progress.Current = ""
	return out, nil
}

// StudyPlanWorkflow generates plans course by course in group order.
// Courses listed in CachedCourses are counted as done without any call.
// The first failure aborts the remaining courses; plans generated before
// it are kept.
func StudyPlanWorkflow(ctx workflow.Context, input StudyPlanInput) (StudyPlanOutput, error) {
	progress := StudyPlanProgress{Total: len(input.Groups)}
	if err := workflow.SetQueryHandler(ctx, QueryGetPlanProgress, func() (StudyPlanProgress, error) {
		return progress, nil
	}); err != nil {
		return StudyPlanOutput{}, err
	}

	cached := make(map[string]bool, len(input.CachedCourses))
	for _, code := range input.CachedCourses {
		cached[code] = true
	}

	ctx = workflow.WithActivityOptions(ctx, activityOptions(5*time.Minute))
	out := StudyPlanOutput{Plans: map[string]models.StudyPlan{}}

	for _, group := range input.Groups {
		if cached[group.CourseCode] && !input.ForceRegenerate {
			progress.Done++
			continue
		}
		progress.Current = group.CourseCode
		var res activities.GeneratePlanOutput
		err := workflow.ExecuteActivity(ctx, "GeneratePlanActivity", activities.GeneratePlanInput{
			CourseCode:      group.CourseCode,
			Fingerprint:     group.Fingerprint,
			Records:         group.Records,
			ForceRegenerate: input.ForceRegenerate,
		}).Get(ctx, &res)
		if err != nil {
			out.FailedCourse = group.CourseCode
			out.FailureReason = err.Error()
			progress.Current = ""
			return out, nil
		}
		out.Plans[group.CourseCode] = res.Plan
		progress.Done++
	}
	progress.Current = ""
	return out, nil
}

// SocialMatchWorkflow publishes the handle against every document and
// fetches matches per document. Each document is isolated: a failure is
// logged and that document reports no matches, the rest proceed.
func SocialMatchWorkflow(ctx workflow.Context, input SocialMatchInput) (SocialMatchOutput, error) {
	logger := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, activityOptions(time.Minute))

	out := SocialMatchOutput{Matches: map[string][]models.MatchEntry{}}
	for _, doc := range input.Documents {
		out.Matches[doc.Name] = []models.MatchEntry{}

		err := workflow.ExecuteActivity(ctx, "PublishMatchActivity", activities.PublishMatchInput{
			Fingerprint: doc.Fingerprint,
			Handle:      input.Handle,
			AvatarURL:   input.AvatarURL,
		}).Get(ctx, nil)
		if err != nil {
			logger.Warn("publish match failed", "document", doc.Name, "error", err)
			continue
		}

		var res activities.FetchMatchesOutput
		err = workflow.ExecuteActivity(ctx, "FetchMatchesActivity", activities.FetchMatchesInput{
			Fingerprint: doc.Fingerprint,
			Handle:      input.Handle,
		}).Get(ctx, &res)
		if err != nil {
			logger.Warn("fetch matches failed", "document", doc.Name, "error", err)
			continue
		}
		if res.Matches != nil {
			out.Matches[doc.Name] = res.Matches
		}
	}
	return out, nil
}
