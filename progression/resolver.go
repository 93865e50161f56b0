// Package progression holds the stage-accessibility rules shared by the
// course map, the stage page guard and the primary call-to-action. Every
// call site goes through Resolve; nothing re-derives the unlock rule.
package progression

import "courseflow/models"

// Status is the resolved state of one stage for one user.
type Status struct {
	Completed  bool
	Accessible bool
	Current    bool // accessible but not yet completed
}

// Resolve computes the status of every stage in a course. isCompleted is a
// point lookup into the user's completion records.
//
// Rules, in precedence order:
//   - the stage with the lowest order is always accessible
//   - a stage with incoming links is accessible when at least one linked
//     prerequisite is completed (OR-gate)
//   - a stage with no incoming links falls back to linear adjacency: it is
//     accessible when the stage with order-1 is completed
//
// Links whose endpoints are not both in the stage set are dropped rather
// than reported; course graphs are edited live and rendering must degrade
// gracefully.
func Resolve(stages []models.Stage, links []models.StageLink, isCompleted func(stageID string) bool) map[string]Status {
	statuses := make(map[string]Status, len(stages))
	if len(stages) == 0 {
		return statuses
	}

	byID := make(map[string]models.Stage, len(stages))
	byOrder := make(map[int]models.Stage, len(stages))
	minOrder := stages[0].Order
	for _, s := range stages {
		byID[s.ID] = s
		byOrder[s.Order] = s
		if s.Order < minOrder {
			minOrder = s.Order
		}
	}

	incoming := make(map[string][]models.StageLink)
	for _, l := range links {
		if _, ok := byID[l.FromStageID]; !ok {
			continue
		}
		if _, ok := byID[l.ToStageID]; !ok {
			continue
		}
		incoming[l.ToStageID] = append(incoming[l.ToStageID], l)
	}

	for _, s := range stages {
		completed := isCompleted(s.ID)
		accessible := false

		switch {
		case s.Order == minOrder:
			accessible = true
		case len(incoming[s.ID]) > 0:
			for _, l := range incoming[s.ID] {
				if isCompleted(l.FromStageID) {
					accessible = true
					break
				}
			}
		default:
			if prev, ok := byOrder[s.Order-1]; ok && isCompleted(prev.ID) {
				accessible = true
			}
		}

		statuses[s.ID] = Status{
			Completed:  completed,
			Accessible: accessible,
			Current:    accessible && !completed,
		}
	}

	return statuses
}
