package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseflow/config"
	"courseflow/models"
	"courseflow/progression"
	"courseflow/store"
	"courseflow/utils"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// GetProgressOverview summarizes the user's XP/level and per-course
// completion for every course they have touched.
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	user, err := store.NewUserStore(pc.DB).GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if user == nil {
		return utils.NotFound(c, "User not found")
	}

	var courseIDs []string
	if err := pc.DB.Model(&models.UserProgress{}).
		Joins("JOIN stages ON stages.id = user_progress.stage_id").
		Where("user_progress.user_id = ?", userID).
		Distinct("stages.course_id").
		Pluck("stages.course_id", &courseIDs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	progressStore := store.NewProgressStore(pc.DB)
	courses := make([]fiber.Map, 0, len(courseIDs))
	completedCourses := 0
	for _, courseID := range courseIDs {
		var course models.Course
		if err := pc.DB.First(&course, "id = ?", courseID).Error; err != nil {
			continue
		}

		var totalStages int64
		pc.DB.Model(&models.Stage{}).Where("course_id = ?", courseID).Count(&totalStages)
		completed, err := progressStore.CountCompleted(userID, courseID)
		if err != nil {
			continue
		}
		if totalStages > 0 && completed == totalStages {
			completedCourses++
		}

		courses = append(courses, fiber.Map{
			"id":               course.ID,
			"title":            course.Title,
			"total_stages":     totalStages,
			"completed_stages": completed,
		})
	}

	return c.JSON(fiber.Map{
		"xp":                user.XP,
		"level":             user.Level,
		"next_level_xp":     progression.XPThresholdForLevel(user.Level),
		"courses":           courses,
		"completed_courses": completedCourses,
	})
}
