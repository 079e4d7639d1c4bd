package workflows

import (
	"context"
	"errors"
	"testing"

	"coursetrack/internal/activities"
	"coursetrack/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func TestBatchExtractWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(BatchExtractWorkflow)
	registerActivityName(env, "ExtractAssignmentsActivity", func(context.Context, activities.ExtractAssignmentsInput) (activities.ExtractAssignmentsOutput, error) {
		return activities.ExtractAssignmentsOutput{}, nil
	})

	env.OnActivity("ExtractAssignmentsActivity", mock.Anything, activities.ExtractAssignmentsInput{DocumentName: "EECS3101.pdf", DocumentPath: "/tmp/a.pdf", Fingerprint: "fp-a"}).
		Return(activities.ExtractAssignmentsOutput{Fingerprint: "fp-a", Items: []models.ExtractedItem{{Title: "Assignment 1", Type: models.TypeAssignment, Accuracy: 95}}}, nil)
	env.OnActivity("ExtractAssignmentsActivity", mock.Anything, activities.ExtractAssignmentsInput{DocumentName: "MATH201.pdf", DocumentPath: "/tmp/b.pdf", Fingerprint: "fp-b"}).
		Return(activities.ExtractAssignmentsOutput{Fingerprint: "fp-b", Items: []models.ExtractedItem{{Title: "Midterm", Type: models.TypeExam, Accuracy: 90}}, FromCache: true}, nil)

	env.ExecuteWorkflow(BatchExtractWorkflow, BatchExtractInput{
		SessionID: "s1",
		Documents: []DocumentRef{
			{Name: "EECS3101.pdf", Path: "/tmp/a.pdf", Fingerprint: "fp-a"},
			{Name: "MATH201.pdf", Path: "/tmp/b.pdf", Fingerprint: "fp-b"},
		},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out BatchExtractOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Empty(t, out.FailedDocument)
	require.Len(t, out.Results, 2)
	require.Equal(t, "EECS3101.pdf", out.Results[0].DocumentName)
	require.Equal(t, "MATH201.pdf", out.Results[1].DocumentName)
	require.True(t, out.Results[1].FromCache)
}

func TestBatchExtractWorkflowFailFastKeepsPriorResults(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(BatchExtractWorkflow)
	registerActivityName(env, "ExtractAssignmentsActivity", func(context.Context, activities.ExtractAssignmentsInput) (activities.ExtractAssignmentsOutput, error) {
		return activities.ExtractAssignmentsOutput{}, nil
	})

	env.OnActivity("ExtractAssignmentsActivity", mock.Anything, activities.ExtractAssignmentsInput{DocumentName: "first.pdf", DocumentPath: "/tmp/1.pdf", Fingerprint: "fp-1"}).
		Return(activities.ExtractAssignmentsOutput{Fingerprint: "fp-1", Items: []models.ExtractedItem{{Title: "Quiz 1", Type: models.TypeQuiz, Accuracy: 88}}}, nil)
	env.OnActivity("ExtractAssignmentsActivity", mock.Anything, activities.ExtractAssignmentsInput{DocumentName: "second.pdf", DocumentPath: "/tmp/2.pdf", Fingerprint: "fp-2"}).
		Return(activities.ExtractAssignmentsOutput{}, errors.New("no extractable text found in PDF"))

	env.ExecuteWorkflow(BatchExtractWorkflow, BatchExtractInput{
		SessionID: "s1",
		Documents: []DocumentRef{
			{Name: "first.pdf", Path: "/tmp/1.pdf", Fingerprint: "fp-1"},
			{Name: "second.pdf", Path: "/tmp/2.pdf", Fingerprint: "fp-2"},
			{Name: "third.pdf", Path: "/tmp/3.pdf", Fingerprint: "fp-3"},
		},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out BatchExtractOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "second.pdf", out.FailedDocument)
	require.Contains(t, out.FailureReason, "no extractable text")
	require.Len(t, out.Results, 1)
	require.Equal(t, "first.pdf", out.Results[0].DocumentName)
	// never reached third.pdf
	env.AssertNumberOfCalls(t, "ExtractAssignmentsActivity", 2)
}

func TestStudyPlanWorkflowSkipsCachedCourses(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(StudyPlanWorkflow)
	registerActivityName(env, "GeneratePlanActivity", func(context.Context, activities.GeneratePlanInput) (activities.GeneratePlanOutput, error) {
		return activities.GeneratePlanOutput{}, nil
	})

	groups := []models.CourseGroup{
		{CourseCode: "EECS3101", Fingerprint: "fp-a", Records: []models.CommittedRecord{{StableID: 0, Title: "A1", Type: models.TypeAssignment}}},
		{CourseCode: "MATH201", Fingerprint: "fp-b", Records: []models.CommittedRecord{{StableID: 1, Title: "Midterm", Type: models.TypeExam}}},
	}

	env.ExecuteWorkflow(StudyPlanWorkflow, StudyPlanInput{
		SessionID:     "s1",
		Groups:        groups,
		CachedCourses: []string{"EECS3101", "MATH201"},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out StudyPlanOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Empty(t, out.FailedCourse)
	require.Empty(t, out.Plans)
	env.AssertNumberOfCalls(t, "GeneratePlanActivity", 0)
}

func TestStudyPlanWorkflowAbortsRemainingOnFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(StudyPlanWorkflow)
	registerActivityName(env, "GeneratePlanActivity", func(context.Context, activities.GeneratePlanInput) (activities.GeneratePlanOutput, error) {
		return activities.GeneratePlanOutput{}, nil
	})

	plan := models.StudyPlan{Overview: "steady weekly pace"}
	env.OnActivity("GeneratePlanActivity", mock.Anything, mock.MatchedBy(func(in activities.GeneratePlanInput) bool {
		return in.CourseCode == "EECS3101"
	})).Return(activities.GeneratePlanOutput{CourseCode: "EECS3101", Plan: plan}, nil)
	env.OnActivity("GeneratePlanActivity", mock.Anything, mock.MatchedBy(func(in activities.GeneratePlanInput) bool {
		return in.CourseCode == "MATH201"
	})).Return(activities.GeneratePlanOutput{}, errors.New("provider unavailable"))

	env.ExecuteWorkflow(StudyPlanWorkflow, StudyPlanInput{
		SessionID: "s1",
		Groups: []models.CourseGroup{
			{CourseCode: "EECS3101", Fingerprint: "fp-a"},
			{CourseCode: "MATH201", Fingerprint: "fp-b"},
			{CourseCode: "PHYS101", Fingerprint: "fp-c"},
		},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out StudyPlanOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "MATH201", out.FailedCourse)
	require.Contains(t, out.FailureReason, "provider unavailable")
	require.Len(t, out.Plans, 1)
	require.Equal(t, plan, out.Plans["EECS3101"])
	env.AssertNumberOfCalls(t, "GeneratePlanActivity", 2)
}

func TestStudyPlanWorkflowForceRegenerateIgnoresCachedList(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(StudyPlanWorkflow)
	registerActivityName(env, "GeneratePlanActivity", func(context.Context, activities.GeneratePlanInput) (activities.GeneratePlanOutput, error) {
		return activities.GeneratePlanOutput{}, nil
	})

	env.OnActivity("GeneratePlanActivity", mock.Anything, mock.MatchedBy(func(in activities.GeneratePlanInput) bool {
		return in.CourseCode == "EECS3101" && in.ForceRegenerate
	})).Return(activities.GeneratePlanOutput{CourseCode: "EECS3101", Plan: models.StudyPlan{Overview: "fresh"}}, nil)

	env.ExecuteWorkflow(StudyPlanWorkflow, StudyPlanInput{
		SessionID:       "s1",
		Groups:          []models.CourseGroup{{CourseCode: "EECS3101", Fingerprint: "fp-a"}},
		CachedCourses:   []string{"EECS3101"},
		ForceRegenerate: true,
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out StudyPlanOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "fresh", out.Plans["EECS3101"].Overview)
	env.AssertNumberOfCalls(t, "GeneratePlanActivity", 1)
}

func TestSocialMatchWorkflowIsolatesFailures(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(SocialMatchWorkflow)
	registerActivityName(env, "PublishMatchActivity", func(context.Context, activities.PublishMatchInput) error { return nil })
	registerActivityName(env, "FetchMatchesActivity", func(context.Context, activities.FetchMatchesInput) (activities.FetchMatchesOutput, error) {
		return activities.FetchMatchesOutput{}, nil
	})

	env.OnActivity("PublishMatchActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("FetchMatchesActivity", mock.Anything, activities.FetchMatchesInput{Fingerprint: "fp-a", Handle: "alice"}).
		Return(activities.FetchMatchesOutput{Matches: []models.MatchEntry{{Handle: "alice", IsSelf: true}, {Handle: "bob"}}}, nil)
	env.OnActivity("FetchMatchesActivity", mock.Anything, activities.FetchMatchesInput{Fingerprint: "fp-b", Handle: "alice"}).
		Return(activities.FetchMatchesOutput{}, errors.New("storage unavailable"))
	env.OnActivity("FetchMatchesActivity", mock.Anything, activities.FetchMatchesInput{Fingerprint: "fp-c", Handle: "alice"}).
		Return(activities.FetchMatchesOutput{Matches: []models.MatchEntry{{Handle: "alice", IsSelf: true}}}, nil)

	env.ExecuteWorkflow(SocialMatchWorkflow, SocialMatchInput{
		SessionID: "s1",
		Handle:    "alice",
		Documents: []MatchDocument{
			{Name: "a.pdf", Fingerprint: "fp-a"},
			{Name: "b.pdf", Fingerprint: "fp-b"},
			{Name: "c.pdf", Fingerprint: "fp-c"},
		},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out SocialMatchOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Len(t, out.Matches, 3)
	require.Len(t, out.Matches["a.pdf"], 2)
	require.Empty(t, out.Matches["b.pdf"])
	require.Len(t, out.Matches["c.pdf"], 1)
}

func TestSocialMatchWorkflowPublishFailureSkipsFetch(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(SocialMatchWorkflow)
	registerActivityName(env, "PublishMatchActivity", func(context.Context, activities.PublishMatchInput) error { return nil })
	registerActivityName(env, "FetchMatchesActivity", func(context.Context, activities.FetchMatchesInput) (activities.FetchMatchesOutput, error) {
		return activities.FetchMatchesOutput{}, nil
	})

	env.OnActivity("PublishMatchActivity", mock.Anything, mock.Anything).Return(errors.New("storage unavailable"))

	env.ExecuteWorkflow(SocialMatchWorkflow, SocialMatchInput{
		SessionID: "s1",
		Handle:    "alice",
		Documents: []MatchDocument{{Name: "a.pdf", Fingerprint: "fp-a"}},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out SocialMatchOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Empty(t, out.Matches["a.pdf"])
	env.AssertNumberOfCalls(t, "FetchMatchesActivity", 0)
}
