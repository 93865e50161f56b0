package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"courseflow/models"
	"courseflow/progression"
	"courseflow/store"
)

var (
	ErrStageNotFound = errors.New("stage not found")
	ErrUserNotFound  = errors.New("user not found")
)

// CompletionResult is everything the client needs to render "stage
// complete" and, when LeveledUp is set, the level-up notice.
type CompletionResult struct {
	Progress  models.UserProgress
	XPAwarded int
	LeveledUp bool
	OldLevel  int
	NewLevel  int
}

// CompletionService marks stages complete. The whole read-modify-write runs
// in one transaction, and the unique (user_id, stage_id) index guarantees a
// single XP award even when two requests race.
type CompletionService struct {
	db *gorm.DB
}

func NewCompletionService(db *gorm.DB) *CompletionService {
	return &CompletionService{db: db}
}

// CompleteStage records a completion for (userID, stageID), awards the
// stage's XP, re-evaluates the user's level and refreshes the owning
// course's completed-count cache. Completing an already-completed stage is
// a no-op success: zero XP, no level-up, the existing record returned.
func (s *CompletionService) CompleteStage(userID, stageID string) (*CompletionResult, error) {
	var result *CompletionResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		catalog := store.NewCatalog(tx)
		progressStore := store.NewProgressStore(tx)
		users := store.NewUserStore(tx)

		stage, err := catalog.GetStageByID(stageID)
		if err != nil {
			return err
		}
		if stage == nil {
			return ErrStageNotFound
		}

		user, err := users.GetByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		existing, err := progressStore.GetProgress(userID, stageID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = &CompletionResult{
				Progress:  *existing,
				XPAwarded: 0,
				LeveledUp: false,
				OldLevel:  user.Level,
				NewLevel:  user.Level,
			}
			return nil
		}

		record := models.UserProgress{
			ID:          uuid.NewString(),
			UserID:      userID,
			StageID:     stageID,
			CompletedAt: time.Now().UTC(),
		}
		if err := progressStore.InsertProgress(&record); err != nil {
			return err
		}

		oldLevel := user.Level
		newXP := user.XP + stage.XPAward
		newLevel := progression.LevelFor(newXP)
		if err := users.SetXPAndLevel(userID, newXP, newLevel); err != nil {
			return err
		}

		count, err := progressStore.CountCompleted(userID, stage.CourseID)
		if err != nil {
			return err
		}
		if err := catalog.SetCompletedStages(stage.CourseID, int(count)); err != nil {
			return err
		}

		result = &CompletionResult{
			Progress:  record,
			XPAwarded: stage.XPAward,
			LeveledUp: newLevel > oldLevel,
			OldLevel:  oldLevel,
			NewLevel:  newLevel,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
