package models

import "time"

type Team struct {
	ID          string       `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `json:"description"`
	LeaderID    string       `gorm:"index" json:"leader_id"`
	Members     []TeamMember `json:"members,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type TeamMember struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	TeamID    string    `gorm:"uniqueIndex:idx_team_user;not null" json:"team_id"`
	UserID    string    `gorm:"uniqueIndex:idx_team_user;not null" json:"user_id"`
	Role      string    `gorm:"default:member" json:"role"` // leader, editor, member
	CreatedAt time.Time `json:"created_at"`
}
