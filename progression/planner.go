package progression

import (
	"sort"

	"courseflow/models"
)

// Label is the action the course page's primary button should offer.
type Label string

const (
	LabelStart    Label = "start"
	LabelContinue Label = "continue"
	LabelReview   Label = "review"
)

// Plan picks the target stage for a course's primary call-to-action from
// already-resolved statuses. It never recomputes accessibility.
//
// Returns an empty target when the course has no stages; the caller renders
// no button in that case.
func Plan(stages []models.Stage, statuses map[string]Status) (targetStageID string, label Label) {
	if len(stages) == 0 {
		return "", ""
	}

	sorted := make([]models.Stage, len(stages))
	copy(sorted, stages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	first := sorted[0]

	allCompleted := true
	anyCompleted := false
	for _, s := range sorted {
		if statuses[s.ID].Completed {
			anyCompleted = true
		} else {
			allCompleted = false
		}
	}

	if allCompleted {
		return first.ID, LabelReview
	}

	for _, s := range sorted {
		if !statuses[s.ID].Current {
			continue
		}
		if s.Order == first.Order && !anyCompleted {
			return s.ID, LabelStart
		}
		return s.ID, LabelContinue
	}

	// No reachable current stage (gaps in the graph): fall back to reviewing
	// the course from the top.
	return first.ID, LabelReview
}
