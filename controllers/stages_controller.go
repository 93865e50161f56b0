package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseflow/config"
	"courseflow/progression"
	"courseflow/services"
	"courseflow/store"
	"courseflow/utils"
)

type StagesController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Completion *services.CompletionService
}

func NewStagesController(db *gorm.DB, cfg *config.Config) *StagesController {
	return &StagesController{
		DB:         db,
		Cfg:        cfg,
		Completion: services.NewCompletionService(db),
	}
}

func (sc *StagesController) GetStageDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	catalog := store.NewCatalog(sc.DB)
	stage, err := catalog.GetStageByID(c.Params("stageId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if stage == nil || stage.CourseID != c.Params("id") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Stage not found",
		})
	}

	stages, err := catalog.GetStagesForCourse(stage.CourseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	links, err := catalog.GetLinksForCourse(stage.CourseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	completed, err := store.NewProgressStore(sc.DB).CompletedStageIDs(userID, stage.CourseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	statuses := progression.Resolve(stages, links, func(stageID string) bool {
		return completed[stageID]
	})
	status := statuses[stage.ID]
	if !status.Accessible {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":  "Stage is locked",
			"locked": true,
		})
	}

	// Neighbors by order, for the prev/next navigation. Stages come back
	// sorted by order already.
	var prevStageID, nextStageID string
	for i, s := range stages {
		if s.ID != stage.ID {
			continue
		}
		if i > 0 {
			prevStageID = stages[i-1].ID
		}
		if i < len(stages)-1 {
			nextStageID = stages[i+1].ID
		}
		break
	}

	return c.JSON(fiber.Map{
		"stage": fiber.Map{
			"id":               stage.ID,
			"course_id":        stage.CourseID,
			"title":            stage.Title,
			"order":            stage.Order,
			"xp_award":         stage.XPAward,
			"file_type":        stage.FileType,
			"file_path":        stage.FilePath,
			"markdown_content": stage.MarkdownContent,
		},
		"completed":     status.Completed,
		"prev_stage_id": prevStageID,
		"next_stage_id": nextStageID,
	})
}

func (sc *StagesController) CompleteStage(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	result, err := sc.Completion.CompleteStage(userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrStageNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Stage not found",
			})
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete stage",
		})
	}

	user, err := store.NewUserStore(sc.DB).GetByID(userID)
	if err != nil || user == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Stage completed",
		"progress": fiber.Map{
			"id":           result.Progress.ID,
			"user_id":      result.Progress.UserID,
			"stage_id":     result.Progress.StageID,
			"completed_at": result.Progress.CompletedAt,
		},
		"xp_awarded": result.XPAwarded,
		"leveled_up": result.LeveledUp,
		"old_level":  result.OldLevel,
		"new_level":  result.NewLevel,
		"user": fiber.Map{
			"xp":            user.XP,
			"level":         user.Level,
			"next_level_xp": progression.XPThresholdForLevel(user.Level),
		},
	})
}
