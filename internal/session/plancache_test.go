package session

import (
	"testing"

	"coursetrack/internal/models"

	"github.com/stretchr/testify/require"
)

func committed(doc, fp, title string, due *string) models.CommittedRecord {
	return models.CommittedRecord{
		Title: title, DueDate: due, Type: models.TypeAssignment,
		SourceDocument: doc, Fingerprint: fp,
	}
}

func TestMergePrecachedFirstWriteWins(t *testing.T) {
	c := NewPlanCache()
	c.MergePrecached(map[string]models.StudyPlan{"CS 101": {Overview: "first"}})
	c.MergePrecached(map[string]models.StudyPlan{
		"CS 101":   {Overview: "second"},
		"MATH 201": {Overview: "math"},
	})

	p, ok := c.Get("CS 101")
	require.True(t, ok)
	require.Equal(t, "first", p.Overview)
	require.True(t, c.Has("MATH 201"))
	require.Equal(t, []string{"CS 101", "MATH 201"}, c.CachedCourses())
}

func TestPutReplacesCachedPlan(t *testing.T) {
	c := NewPlanCache()
	c.MergePrecached(map[string]models.StudyPlan{"CS 101": {Overview: "old"}})
	c.Put("CS 101", models.StudyPlan{Overview: "regenerated"})
	p, _ := c.Get("CS 101")
	require.Equal(t, "regenerated", p.Overview)
}

func TestGroupByCoursePreservesFirstAppearanceOrder(t *testing.T) {
	recs := []models.CommittedRecord{
		committed("MATH201_outline.pdf", "fp-m", "M1", nil),
		committed("CS101-syllabus.pdf", "fp-c", "C1", nil),
		committed("MATH201_outline.pdf", "fp-m2", "M2", nil),
		committed("averyveryverylongfilename.pdf", "fp-g", "G1", nil),
	}
	groups := GroupByCourse(recs)
	require.Len(t, groups, 3)
	require.Equal(t, "MATH 201", groups[0].CourseCode)
	require.Equal(t, "CS 101", groups[1].CourseCode)
	require.Equal(t, "General", groups[2].CourseCode)

	// Representative fingerprint comes from the record that created the group.
	require.Equal(t, "fp-m", groups[0].Fingerprint)
	require.Len(t, groups[0].Records, 2)
}

func TestViewsIncludeSyntheticAllCourses(t *testing.T) {
	d1, d2 := "2026-09-10", "2026-09-02"
	recs := []models.CommittedRecord{
		committed("CS101.pdf", "fp-c", "Late", &d1),
		committed("MATH201.pdf", "fp-m", "NoDate", nil),
		committed("CS101.pdf", "fp-c", "Early", &d2),
	}
	c := NewPlanCache()
	c.Put("CS 101", models.StudyPlan{Overview: "cs"})

	views := c.Views(recs)
	require.Len(t, views, 3)

	last := views[len(views)-1]
	require.Equal(t, AllCourses, last.CourseCode)
	require.Nil(t, last.Plan)
	require.Equal(t, []string{"Early", "Late", "NoDate"}, []string{
		last.Records[0].Title, last.Records[1].Title, last.Records[2].Title,
	})

	require.Equal(t, "CS 101", views[0].CourseCode)
	require.NotNil(t, views[0].Plan)
	require.Equal(t, "MATH 201", views[1].CourseCode)
	require.Nil(t, views[1].Plan)
}

func TestSessionResetClearsEverythingTogether(t *testing.T) {
	s := New("s1")
	s.AddDocument(Document{Name: "CS101.pdf", Fingerprint: "fp"})
	s.Lock()
	s.Aggregator().Ingest("CS101.pdf", "fp", sampleItems("A1"))
	s.Plans().Put("CS 101", models.StudyPlan{Overview: "x"})
	s.Unlock()
	s.SetMatches(map[string][]models.MatchEntry{"CS101.pdf": {{Handle: "alice"}}})

	s.Reset()

	require.Empty(t, s.Documents())
	require.Empty(t, s.Matches())
	s.Lock()
	defer s.Unlock()
	require.Empty(t, s.Aggregator().Records())
	require.False(t, s.Plans().Has("CS 101"))
}
