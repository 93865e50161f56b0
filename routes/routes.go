package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseflow/config"
	"courseflow/controllers"
	"courseflow/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Get("/api/progress/overview", authMiddleware, progressController.GetProgressOverview)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	stagesController := controllers.NewStagesController(db, cfg)
	app.Get("/api/public-courses", authMiddleware, coursesController.GetPublicCourses)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetUserCourses)
	courses.Post("/", coursesController.CreateCourse)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Post("/:id/stages", coursesController.AddStage)
	courses.Post("/:id/links", coursesController.AddLink)
	courses.Get("/:id/stages/:stageId", stagesController.GetStageDetails)

	// Stage completion
	app.Post("/api/stages/:id/complete", authMiddleware, stagesController.CompleteStage)

	// Teams routes
	teamsController := controllers.NewTeamsController(db, cfg)
	teams := app.Group("/api/teams", authMiddleware)
	teams.Post("/", teamsController.CreateTeam)
	teams.Get("/", teamsController.GetTeams)
	teams.Get("/:id", teamsController.GetTeamDetails)
	teams.Post("/:id/members", teamsController.AddMember)
}
