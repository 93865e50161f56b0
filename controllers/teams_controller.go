package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"courseflow/config"
	"courseflow/models"
	"courseflow/store"
	"courseflow/utils"
)

type TeamsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTeamsController(db *gorm.DB, cfg *config.Config) *TeamsController {
	return &TeamsController{DB: db, Cfg: cfg}
}

func (tc *TeamsController) CreateTeam(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if strings.TrimSpace(input.Name) == "" {
		return utils.ValidationError(c, map[string]string{"name": "Name is required"})
	}

	team := models.Team{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		LeaderID:    userID,
	}
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		member := models.TeamMember{
			ID:     uuid.NewString(),
			TeamID: team.ID,
			UserID: userID,
			Role:   "leader",
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create team",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Team created",
		"team":    team,
	})
}

func (tc *TeamsController) GetTeams(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var teams []models.Team
	if err := tc.DB.
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Find(&teams).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{"teams": teams})
}

func (tc *TeamsController) GetTeamDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var team models.Team
	if err := tc.DB.Preload("Members").First(&team, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	isMember := false
	for _, m := range team.Members {
		if m.UserID == userID {
			isMember = true
			break
		}
	}
	if !isMember {
		return utils.Forbidden(c, "You are not a member of this team")
	}

	var courses []models.Course
	if err := tc.DB.Where("team_id = ?", team.ID).Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"team":    team,
		"courses": courses,
	})
}

func (tc *TeamsController) AddMember(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var team models.Team
	if err := tc.DB.First(&team, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}
	if team.LeaderID != userID {
		return utils.Forbidden(c, "Only the team leader can add members")
	}

	var input struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Role == "" {
		input.Role = "member"
	}
	if input.Role != "member" && input.Role != "editor" {
		return utils.ValidationError(c, map[string]string{"role": "Role must be member or editor"})
	}

	user, err := store.NewUserStore(tc.DB).GetByEmail(input.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if user == nil {
		return utils.NotFound(c, "User not found")
	}

	var count int64
	tc.DB.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", team.ID, user.ID).
		Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "User is already a member of this team",
		})
	}

	member := models.TeamMember{
		ID:     uuid.NewString(),
		TeamID: team.ID,
		UserID: user.ID,
		Role:   input.Role,
	}
	if err := tc.DB.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not add member",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Member added",
		"member":  member,
	})
}
