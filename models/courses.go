package models

import "time"

type CourseMode string

const (
	CourseModePublic CourseMode = "public"
	CourseModeTeam   CourseMode = "team"
)

type Course struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	Mode        CourseMode `gorm:"default:public" json:"mode"`
	Price       int        `json:"price"`                // public courses only, 0 means free
	CreatorID   string     `gorm:"index" json:"creator_id"`
	TeamID      string     `gorm:"index" json:"team_id"` // set only when Mode is team
	IsPublished bool       `gorm:"default:true" json:"is_published"`
	// CompletedStages is a read-through cache refreshed after every stage
	// completion. Total stage counts are always computed from the stages
	// table, never stored.
	CompletedStages int       `gorm:"default:0" json:"completed_stages"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Stage struct {
	ID       string `gorm:"primaryKey" json:"id"`
	CourseID string `gorm:"index;not null" json:"course_id"`
	Title    string `json:"title"`
	// Order is unique per course; the lowest order is the course entry point.
	Order           int       `gorm:"column:sequence_order;not null" json:"order"`
	XPAward         int       `gorm:"default:0" json:"xp_award"`
	FileType        string    `gorm:"default:md" json:"file_type"` // md, pdf
	FilePath        string    `json:"file_path"`
	MarkdownContent string    `json:"markdown_content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StageLink is a prerequisite edge: FromStageID must be completed before
// ToStageID unlocks. Several links into one stage form an OR-gate.
type StageLink struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	CourseID    string    `gorm:"index;not null" json:"course_id"`
	FromStageID string    `gorm:"index;not null" json:"from_stage_id"`
	ToStageID   string    `gorm:"index;not null" json:"to_stage_id"`
	CreatedAt   time.Time `json:"created_at"`
}
