package models

import "time"

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	AvatarURL    string    `json:"avatar_url"`
	XP           int       `gorm:"default:0" json:"xp"`
	Level        int       `gorm:"default:1" json:"level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserProgress records that a user finished a stage. The composite unique
// index makes completion idempotent even under concurrent requests.
type UserProgress struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"uniqueIndex:idx_user_stage;not null" json:"user_id"`
	StageID     string    `gorm:"uniqueIndex:idx_user_stage;not null" json:"stage_id"`
	CompletedAt time.Time `json:"completed_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
