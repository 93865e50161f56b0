package store

import (
	"errors"

	"gorm.io/gorm"

	"courseflow/models"
)

type gormProgressStore struct {
	db *gorm.DB
}

func NewProgressStore(db *gorm.DB) ProgressStore {
	return &gormProgressStore{db: db}
}

func (s *gormProgressStore) GetProgress(userID, stageID string) (*models.UserProgress, error) {
	var p models.UserProgress
	err := s.db.Where("user_id = ? AND stage_id = ?", userID, stageID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *gormProgressStore) InsertProgress(p *models.UserProgress) error {
	return s.db.Create(p).Error
}

func (s *gormProgressStore) CountCompleted(userID, courseID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.UserProgress{}).
		Joins("JOIN stages ON stages.id = user_progress.stage_id").
		Where("user_progress.user_id = ? AND stages.course_id = ?", userID, courseID).
		Count(&count).Error
	return count, err
}

func (s *gormProgressStore) CompletedStageIDs(userID, courseID string) (map[string]bool, error) {
	var ids []string
	err := s.db.Model(&models.UserProgress{}).
		Joins("JOIN stages ON stages.id = user_progress.stage_id").
		Where("user_progress.user_id = ? AND stages.course_id = ?", userID, courseID).
		Pluck("user_progress.stage_id", &ids).Error
	if err != nil {
		return nil, err
	}
	completed := make(map[string]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}
