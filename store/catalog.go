package store

import (
	"errors"

	"gorm.io/gorm"

	"courseflow/models"
)

type gormCatalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) Catalog {
	return &gormCatalog{db: db}
}

func (c *gormCatalog) GetCourseByID(id string) (*models.Course, error) {
	var course models.Course
	if err := c.db.First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (c *gormCatalog) GetStagesForCourse(courseID string) ([]models.Stage, error) {
	var stages []models.Stage
	err := c.db.Where("course_id = ?", courseID).
		Order("sequence_order").
		Find(&stages).Error
	return stages, err
}

func (c *gormCatalog) GetLinksForCourse(courseID string) ([]models.StageLink, error) {
	var links []models.StageLink
	err := c.db.Where("course_id = ?", courseID).Find(&links).Error
	return links, err
}

func (c *gormCatalog) GetStageByID(id string) (*models.Stage, error) {
	var stage models.Stage
	if err := c.db.First(&stage, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stage, nil
}

func (c *gormCatalog) SetCompletedStages(courseID string, count int) error {
	return c.db.Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("completed_stages", count).Error
}
