package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"courseflow/config"
	"courseflow/models"
	"courseflow/progression"
	"courseflow/store"
	"courseflow/utils"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

// userTeamIDs returns the ids of the teams the user belongs to.
func (cc *CoursesController) userTeamIDs(userID string) ([]string, error) {
	var teamIDs []string
	err := cc.DB.Model(&models.TeamMember{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &teamIDs).Error
	return teamIDs, err
}

func (cc *CoursesController) canViewCourse(userID string, course *models.Course) (bool, error) {
	if course.CreatorID == userID {
		return true, nil
	}
	if course.Mode == models.CourseModeTeam {
		var count int64
		err := cc.DB.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ?", course.TeamID, userID).
			Count(&count).Error
		return count > 0, err
	}
	return course.IsPublished, nil
}

func (cc *CoursesController) canManageCourse(userID string, course *models.Course) (bool, error) {
	if course.CreatorID == userID {
		return true, nil
	}
	if course.Mode == models.CourseModeTeam {
		var count int64
		err := cc.DB.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ? AND role = ?", course.TeamID, userID, "leader").
			Count(&count).Error
		return count > 0, err
	}
	return false, nil
}

// courseSummary flattens a course plus the user's completion counts for
// card rendering.
func (cc *CoursesController) courseSummary(userID string, course models.Course) (fiber.Map, error) {
	var totalStages int64
	if err := cc.DB.Model(&models.Stage{}).Where("course_id = ?", course.ID).Count(&totalStages).Error; err != nil {
		return nil, err
	}
	completed, err := store.NewProgressStore(cc.DB).CountCompleted(userID, course.ID)
	if err != nil {
		return nil, err
	}

	return fiber.Map{
		"id":               course.ID,
		"title":            course.Title,
		"description":      course.Description,
		"image_url":        course.ImageURL,
		"mode":             course.Mode,
		"price":            course.Price,
		"team_id":          course.TeamID,
		"creator_id":       course.CreatorID,
		"is_published":     course.IsPublished,
		"total_stages":     totalStages,
		"completed_stages": completed,
	}, nil
}

func (cc *CoursesController) GetUserCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	teamIDs, err := cc.userTeamIDs(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	query := cc.DB.Model(&models.Course{}).
		Where("(mode = ? AND is_published = ?) OR creator_id = ?",
			models.CourseModePublic, true, userID)
	if len(teamIDs) > 0 {
		query = cc.DB.Model(&models.Course{}).
			Where("(mode = ? AND is_published = ?) OR creator_id = ? OR team_id IN ?",
				models.CourseModePublic, true, userID, teamIDs)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		summary, err := cc.courseSummary(userID, course)
		if err != nil {
			continue
		}
		result = append(result, summary)
	}

	return c.JSON(fiber.Map{"courses": result})
}

func (cc *CoursesController) GetPublicCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var courses []models.Course
	if err := cc.DB.Where("mode = ? AND is_published = ?", models.CourseModePublic, true).
		Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		summary, err := cc.courseSummary(userID, course)
		if err != nil {
			continue
		}
		result = append(result, summary)
	}

	return c.JSON(fiber.Map{"courses": result})
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
		Mode        string `json:"mode"`
		Price       int    `json:"price"`
		TeamID      string `json:"team_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	errors := make(map[string]string)
	if strings.TrimSpace(input.Title) == "" {
		errors["title"] = "Title is required"
	}
	mode := models.CourseMode(input.Mode)
	if mode == "" {
		mode = models.CourseModePublic
	}
	if mode != models.CourseModePublic && mode != models.CourseModeTeam {
		errors["mode"] = "Mode must be public or team"
	}
	if mode == models.CourseModeTeam && input.TeamID == "" {
		errors["team_id"] = "Team ID is required for team courses"
	}
	if mode == models.CourseModePublic && input.TeamID != "" {
		errors["team_id"] = "Team ID is only allowed for team courses"
	}
	if input.Price < 0 {
		errors["price"] = "Price cannot be negative"
	}
	if len(errors) > 0 {
		return utils.ValidationError(c, errors)
	}

	if mode == models.CourseModeTeam {
		var count int64
		if err := cc.DB.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ?", input.TeamID, userID).
			Count(&count).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		if count == 0 {
			return utils.Forbidden(c, "You are not a member of this team")
		}
	}

	course := models.Course{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Mode:        mode,
		Price:       input.Price,
		CreatorID:   userID,
		TeamID:      input.TeamID,
		IsPublished: true,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	catalog := store.NewCatalog(cc.DB)
	course, err := catalog.GetCourseByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if course == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	visible, err := cc.canViewCourse(userID, course)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if !visible {
		return utils.Forbidden(c, "You don't have access to this course")
	}

	stages, err := catalog.GetStagesForCourse(course.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	links, err := catalog.GetLinksForCourse(course.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	completed, err := store.NewProgressStore(cc.DB).CompletedStageIDs(userID, course.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	statuses := progression.Resolve(stages, links, func(stageID string) bool {
		return completed[stageID]
	})
	targetStageID, label := progression.Plan(stages, statuses)

	stageMaps := make([]fiber.Map, 0, len(stages))
	completedCount := 0
	for _, s := range stages {
		st := statuses[s.ID]
		if st.Completed {
			completedCount++
		}
		stageMaps = append(stageMaps, fiber.Map{
			"id":         s.ID,
			"title":      s.Title,
			"order":      s.Order,
			"xp_award":   s.XPAward,
			"file_type":  s.FileType,
			"completed":  st.Completed,
			"accessible": st.Accessible,
			"current":    st.Current,
		})
	}

	linkMaps := make([]fiber.Map, 0, len(links))
	for _, l := range links {
		linkMaps = append(linkMaps, fiber.Map{
			"id":            l.ID,
			"from_stage_id": l.FromStageID,
			"to_stage_id":   l.ToStageID,
		})
	}

	plan := fiber.Map{}
	if targetStageID != "" {
		plan = fiber.Map{
			"target_stage_id": targetStageID,
			"label":           label,
		}
	}

	return c.JSON(fiber.Map{
		"course": fiber.Map{
			"id":               course.ID,
			"title":            course.Title,
			"description":      course.Description,
			"image_url":        course.ImageURL,
			"mode":             course.Mode,
			"price":            course.Price,
			"team_id":          course.TeamID,
			"creator_id":       course.CreatorID,
			"is_published":     course.IsPublished,
			"total_stages":     len(stages),
			"completed_stages": completedCount,
		},
		"stages": stageMaps,
		"links":  linkMaps,
		"plan":   plan,
	})
}

func (cc *CoursesController) AddStage(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	catalog := store.NewCatalog(cc.DB)
	course, err := catalog.GetCourseByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if course == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	allowed, err := cc.canManageCourse(userID, course)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if !allowed {
		return utils.Forbidden(c, "You don't have permission to edit this course")
	}

	var input struct {
		Title           string `json:"title"`
		XPAward         int    `json:"xp_award"`
		FileType        string `json:"file_type"`
		FilePath        string `json:"file_path"`
		MarkdownContent string `json:"markdown_content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.XPAward < 0 {
		return utils.BadRequest(c, "XP award cannot be negative")
	}
	if input.FileType == "" {
		input.FileType = "md"
	}

	// Orders are assigned server-side so they stay unique per course.
	var maxOrder int
	cc.DB.Model(&models.Stage{}).
		Where("course_id = ?", course.ID).
		Select("COALESCE(MAX(sequence_order), 0)").
		Scan(&maxOrder)

	stage := models.Stage{
		ID:              uuid.NewString(),
		CourseID:        course.ID,
		Title:           input.Title,
		Order:           maxOrder + 1,
		XPAward:         input.XPAward,
		FileType:        input.FileType,
		FilePath:        input.FilePath,
		MarkdownContent: input.MarkdownContent,
	}
	if err := cc.DB.Create(&stage).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create stage",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Stage added",
		"stage":   stage,
	})
}

func (cc *CoursesController) AddLink(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	catalog := store.NewCatalog(cc.DB)
	course, err := catalog.GetCourseByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if course == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	allowed, err := cc.canManageCourse(userID, course)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	if !allowed {
		return utils.Forbidden(c, "You don't have permission to edit this course")
	}

	var input struct {
		FromStageID string `json:"from_stage_id"`
		ToStageID   string `json:"to_stage_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	errors := make(map[string]string)
	for field, id := range map[string]string{
		"from_stage_id": input.FromStageID,
		"to_stage_id":   input.ToStageID,
	} {
		stage, err := catalog.GetStageByID(id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		if stage == nil || stage.CourseID != course.ID {
			errors[field] = "Stage does not belong to this course"
		}
	}
	if input.FromStageID == input.ToStageID {
		errors["to_stage_id"] = "A stage cannot be its own prerequisite"
	}
	if len(errors) > 0 {
		return utils.ValidationError(c, errors)
	}

	link := models.StageLink{
		ID:          uuid.NewString(),
		CourseID:    course.ID,
		FromStageID: input.FromStageID,
		ToStageID:   input.ToStageID,
	}
	if err := cc.DB.Create(&link).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create link",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Link added",
		"link":    link,
	})
}
