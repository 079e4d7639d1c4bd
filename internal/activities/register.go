package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractAssignmentsActivity)
	w.RegisterActivity(a.GeneratePlanActivity)
	w.RegisterActivity(a.PublishMatchActivity)
	w.RegisterActivity(a.FetchMatchesActivity)
}
