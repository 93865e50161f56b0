package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"courseflow/models"
)

func stage(id string, order int) models.Stage {
	return models.Stage{ID: id, CourseID: "course-1", Order: order}
}

func link(from, to string) models.StageLink {
	return models.StageLink{ID: from + "->" + to, CourseID: "course-1", FromStageID: from, ToStageID: to}
}

func completedSet(ids ...string) func(string) bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(id string) bool { return set[id] }
}

func TestResolveFirstStageAlwaysAccessible(t *testing.T) {
	stages := []models.Stage{stage("s1", 1), stage("s2", 2)}
	links := []models.StageLink{link("s2", "s1")} // even a backward edge cannot lock the entry point

	statuses := Resolve(stages, links, completedSet())

	assert.True(t, statuses["s1"].Accessible)
	assert.True(t, statuses["s1"].Current)
	assert.False(t, statuses["s1"].Completed)
}

func TestResolveFirstStageIsMinimumOrderNotLiteralOne(t *testing.T) {
	stages := []models.Stage{stage("s5", 5), stage("s6", 6), stage("s7", 7)}

	statuses := Resolve(stages, nil, completedSet())

	assert.True(t, statuses["s5"].Accessible)
	assert.False(t, statuses["s6"].Accessible)
	assert.False(t, statuses["s7"].Accessible)
}

func TestResolveLinearFallbackNoLinks(t *testing.T) {
	stages := []models.Stage{stage("s1", 1), stage("s2", 2), stage("s3", 3)}

	// No completions: only the first stage is open.
	statuses := Resolve(stages, nil, completedSet())
	assert.True(t, statuses["s1"].Current)
	assert.False(t, statuses["s2"].Accessible)
	assert.False(t, statuses["s3"].Accessible)

	// Completing s1 opens s2 via order adjacency, s3 stays locked.
	statuses = Resolve(stages, nil, completedSet("s1"))
	assert.True(t, statuses["s1"].Completed)
	assert.False(t, statuses["s1"].Current)
	assert.True(t, statuses["s2"].Current)
	assert.False(t, statuses["s3"].Accessible)
}

func TestResolveORGatePrerequisites(t *testing.T) {
	stages := []models.Stage{stage("s1", 1), stage("s2", 2), stage("s3", 3)}
	links := []models.StageLink{link("s1", "s3"), link("s2", "s3")}

	statuses := Resolve(stages, links, completedSet())
	assert.False(t, statuses["s3"].Accessible, "no prerequisite completed")

	statuses = Resolve(stages, links, completedSet("s2"))
	assert.True(t, statuses["s3"].Accessible, "one completed prerequisite is enough")

	statuses = Resolve(stages, links, completedSet("s1", "s2"))
	assert.True(t, statuses["s3"].Accessible)
}

func TestResolveExplicitLinksOverrideFallback(t *testing.T) {
	stages := []models.Stage{stage("s1", 1), stage("s2", 2), stage("s3", 3)}

	// Orphan s3 falls back to order adjacency: s2 completed unlocks it.
	statuses := Resolve(stages, nil, completedSet("s1", "s2"))
	assert.True(t, statuses["s3"].Accessible)

	// An explicit never-completed prerequisite switches the fallback off.
	links := []models.StageLink{link("s1", "s3")}
	statuses = Resolve(stages, links, completedSet("s2"))
	assert.False(t, statuses["s3"].Accessible)

	// It unlocks only through the link's own source.
	statuses = Resolve(stages, links, completedSet("s1"))
	assert.True(t, statuses["s3"].Accessible)
}

func TestResolveIgnoresMalformedLinks(t *testing.T) {
	stages := []models.Stage{stage("s1", 1), stage("s2", 2)}
	links := []models.StageLink{
		link("ghost", "s2"),
		link("s1", "ghost"),
	}

	// Both links reference a stage outside the course, so s2 behaves as an
	// orphan and uses the fallback rule.
	statuses := Resolve(stages, links, completedSet())
	assert.False(t, statuses["s2"].Accessible)

	statuses = Resolve(stages, links, completedSet("s1"))
	assert.True(t, statuses["s2"].Accessible)
}

func TestResolveCycleDoesNotLoop(t *testing.T) {
	stages := []models.Stage{stage("s1", 1), stage("s2", 2)}
	links := []models.StageLink{link("s1", "s2"), link("s2", "s1")}

	statuses := Resolve(stages, links, completedSet("s1"))

	assert.True(t, statuses["s1"].Accessible)
	assert.True(t, statuses["s2"].Accessible)
}

func TestResolveEmptyCourse(t *testing.T) {
	statuses := Resolve(nil, nil, completedSet())
	assert.Empty(t, statuses)
}

func TestResolveUnsortedInput(t *testing.T) {
	stages := []models.Stage{stage("s3", 3), stage("s1", 1), stage("s2", 2)}

	statuses := Resolve(stages, nil, completedSet("s1"))

	assert.True(t, statuses["s1"].Completed)
	assert.True(t, statuses["s2"].Current)
	assert.False(t, statuses["s3"].Accessible)
}
