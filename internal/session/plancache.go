package session

import (
	"sort"

	"coursetrack/internal/course"
	"coursetrack/internal/models"
)

// AllCourses is the synthetic pseudo-course exposed by views: it unions
// every group's records but carries no plan text of its own.
const AllCourses = "All Courses"

// PlanCache maps course code to a generated or pre-cached study plan for
// the lifetime of one session. Entries are never evicted except by Reset.
type PlanCache struct {
	plans map[string]models.StudyPlan
}

func NewPlanCache() *PlanCache {
	return &PlanCache{plans: map[string]models.StudyPlan{}}
}

// MergePrecached unions externally supplied plans into the cache. Existing
// entries are not overwritten: the first write per course wins for the
// session unless an explicit regenerate replaces it via Put.
func (c *PlanCache) MergePrecached(plans map[string]models.StudyPlan) {
	for code, plan := range plans {
		if _, ok := c.plans[code]; ok {
			continue
		}
		c.plans[code] = plan
	}
}

// Put stores a freshly generated plan, replacing any cached one.
func (c *PlanCache) Put(courseCode string, plan models.StudyPlan) {
	c.plans[courseCode] = plan
}

func (c *PlanCache) Get(courseCode string) (models.StudyPlan, bool) {
	p, ok := c.plans[courseCode]
	return p, ok
}

func (c *PlanCache) Has(courseCode string) bool {
	_, ok := c.plans[courseCode]
	return ok
}

// CachedCourses returns the course codes currently held, for skip lists.
func (c *PlanCache) CachedCourses() []string {
	out := make([]string, 0, len(c.plans))
	for code := range c.plans {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Reset clears the whole mapping.
func (c *PlanCache) Reset() {
	c.plans = map[string]models.StudyPlan{}
}

// GroupByCourse groups committed records by the resolved course code of
// their source document, preserving first-appearance order. The group's
// representative fingerprint is the fingerprint of the record that created
// the group; it becomes the generation cache key.
func GroupByCourse(records []models.CommittedRecord) []models.CourseGroup {
	order := make([]string, 0)
	byCode := map[string]*models.CourseGroup{}
	for _, rec := range records {
		code := course.ResolveOrGeneral(rec.SourceDocument)
		g, ok := byCode[code]
		if !ok {
			g = &models.CourseGroup{CourseCode: code, Fingerprint: rec.Fingerprint}
			byCode[code] = g
			order = append(order, code)
		}
		g.Records = append(g.Records, rec)
	}
	out := make([]models.CourseGroup, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

// CourseView is one entry of the per-course study view.
type CourseView struct {
	CourseCode string                   `json:"course_code"`
	Records    []models.CommittedRecord `json:"records"`
	Plan       *models.StudyPlan        `json:"plan,omitempty"`
}

// Views builds the per-course views plus the synthetic AllCourses entry,
// whose record list is the union of every group sorted by due date
// ascending (records without a due date sort last) and whose plan is empty.
func (c *PlanCache) Views(records []models.CommittedRecord) []CourseView {
	groups := GroupByCourse(records)
	out := make([]CourseView, 0, len(groups)+1)
	for _, g := range groups {
		view := CourseView{CourseCode: g.CourseCode, Records: g.Records}
		if plan, ok := c.plans[g.CourseCode]; ok {
			p := plan
			view.Plan = &p
		}
		out = append(out, view)
	}

	all := make([]models.CommittedRecord, len(records))
	copy(all, records)
	sort.SliceStable(all, func(i, j int) bool {
		di, dj := all[i].DueDate, all[j].DueDate
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	out = append(out, CourseView{CourseCode: AllCourses, Records: all})
	return out
}
