// Package store is the persistence boundary of the progression core. The
// interfaces exist so the service layer never touches query details and so
// tests can run against a throwaway database.
package store

import "courseflow/models"

// Catalog is read-mostly course content: courses, stages and their
// prerequisite links. The one write is the completed-count cache refresh.
type Catalog interface {
	GetCourseByID(id string) (*models.Course, error)
	GetStagesForCourse(courseID string) ([]models.Stage, error)
	GetLinksForCourse(courseID string) ([]models.StageLink, error)
	GetStageByID(id string) (*models.Stage, error)
	SetCompletedStages(courseID string, count int) error
}

// ProgressStore holds per-user stage completion facts.
type ProgressStore interface {
	// GetProgress returns nil without error when no record exists.
	GetProgress(userID, stageID string) (*models.UserProgress, error)
	InsertProgress(p *models.UserProgress) error
	CountCompleted(userID, courseID string) (int64, error)
	CompletedStageIDs(userID, courseID string) (map[string]bool, error)
}

// UserStore holds user records including the cached XP/level pair.
type UserStore interface {
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(u *models.User) error
	SetXPAndLevel(userID string, xp, level int) error
}
