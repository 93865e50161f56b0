package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"courseflow/config"
	"courseflow/database"
	"courseflow/routes"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{JWTSecret: "test-secret"}
	app := fiber.New()
	routes.SetupRoutes(app, db, cfg)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

func registerUser(t *testing.T, app *fiber.App, name, email string) (token string) {
	t.Helper()
	resp, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ = result["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	app := setupTestApp(t)

	registerUser(t, app, "Alex Doe", "alex@example.com")

	resp, result := doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    "alex@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, result["token"])
	user := result["user"].(map[string]interface{})
	assert.Equal(t, "Alex Doe", user["name"])
	assert.Equal(t, float64(1), user["level"])

	resp, _ = doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    "alex@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRoutesRequireAuth(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, "GET", "/api/courses", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/stages/some-stage/complete", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func createCourseWithStages(t *testing.T, app *fiber.App, token string, xpAwards ...int) (courseID string, stageIDs []string) {
	t.Helper()

	resp, result := doJSON(t, app, "POST", "/api/courses", token, map[string]interface{}{
		"title": "Intro to Unity",
		"mode":  "public",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	courseID = result["course"].(map[string]interface{})["id"].(string)

	for i, xp := range xpAwards {
		resp, result = doJSON(t, app, "POST", "/api/courses/"+courseID+"/stages", token, map[string]interface{}{
			"title":            fmt.Sprintf("Stage %d", i+1),
			"xp_award":         xp,
			"markdown_content": "# Hello",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		stageIDs = append(stageIDs, result["stage"].(map[string]interface{})["id"].(string))
	}
	return courseID, stageIDs
}

func TestCourseMapAndProgressionFlow(t *testing.T) {
	app := setupTestApp(t)
	token := registerUser(t, app, "Alex Doe", "alex@example.com")

	courseID, stageIDs := createCourseWithStages(t, app, token, 30, 30, 30)

	// Fresh course: only the first stage is open, CTA says start.
	resp, result := doJSON(t, app, "GET", "/api/courses/"+courseID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	stages := result["stages"].([]interface{})
	require.Len(t, stages, 3)
	first := stages[0].(map[string]interface{})
	assert.Equal(t, true, first["accessible"])
	assert.Equal(t, true, first["current"])
	second := stages[1].(map[string]interface{})
	assert.Equal(t, false, second["accessible"])
	plan := result["plan"].(map[string]interface{})
	assert.Equal(t, stageIDs[0], plan["target_stage_id"])
	assert.Equal(t, "start", plan["label"])

	// Locked stages cannot be opened.
	resp, result = doJSON(t, app, "GET", "/api/courses/"+courseID+"/stages/"+stageIDs[1], token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, true, result["locked"])

	// The first stage can.
	resp, result = doJSON(t, app, "GET", "/api/courses/"+courseID+"/stages/"+stageIDs[0], token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, result["completed"])
	assert.Equal(t, stageIDs[1], result["next_stage_id"])

	// Complete it: 30 XP, no level-up yet.
	resp, result = doJSON(t, app, "POST", "/api/stages/"+stageIDs[0]+"/complete", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(30), result["xp_awarded"])
	assert.Equal(t, false, result["leveled_up"])
	assert.Equal(t, float64(30), result["user"].(map[string]interface{})["xp"])

	// Second completion is a no-op.
	resp, result = doJSON(t, app, "POST", "/api/stages/"+stageIDs[0]+"/complete", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), result["xp_awarded"])
	assert.Equal(t, false, result["leveled_up"])
	assert.Equal(t, float64(30), result["user"].(map[string]interface{})["xp"])

	// The map moved on: stage 2 is now current, CTA says continue.
	resp, result = doJSON(t, app, "GET", "/api/courses/"+courseID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	stages = result["stages"].([]interface{})
	second = stages[1].(map[string]interface{})
	assert.Equal(t, true, second["current"])
	third := stages[2].(map[string]interface{})
	assert.Equal(t, false, third["accessible"])
	plan = result["plan"].(map[string]interface{})
	assert.Equal(t, stageIDs[1], plan["target_stage_id"])
	assert.Equal(t, "continue", plan["label"])
	course := result["course"].(map[string]interface{})
	assert.Equal(t, float64(3), course["total_stages"])
	assert.Equal(t, float64(1), course["completed_stages"])

	// Completing the rest levels the user up (90 XP -> 120 XP) and flips
	// the CTA to review.
	doJSON(t, app, "POST", "/api/stages/"+stageIDs[1]+"/complete", token, nil)
	resp, result = doJSON(t, app, "POST", "/api/stages/"+stageIDs[2]+"/complete", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["leveled_up"])
	assert.Equal(t, float64(1), result["old_level"])
	assert.Equal(t, float64(2), result["new_level"])

	resp, result = doJSON(t, app, "GET", "/api/courses/"+courseID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	plan = result["plan"].(map[string]interface{})
	assert.Equal(t, stageIDs[0], plan["target_stage_id"])
	assert.Equal(t, "review", plan["label"])
}

func TestExplicitLinksGateStages(t *testing.T) {
	app := setupTestApp(t)
	token := registerUser(t, app, "Alex Doe", "alex@example.com")

	courseID, stageIDs := createCourseWithStages(t, app, token, 10, 10, 10)

	// stage3 requires stage1 OR stage2.
	for _, from := range []string{stageIDs[0], stageIDs[1]} {
		resp, _ := doJSON(t, app, "POST", "/api/courses/"+courseID+"/links", token, map[string]interface{}{
			"from_stage_id": from,
			"to_stage_id":   stageIDs[2],
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	// stage2 has no incoming link, so completing stage1 unlocks it by
	// order adjacency, and unlocks stage3 through the explicit link.
	doJSON(t, app, "POST", "/api/stages/"+stageIDs[0]+"/complete", token, nil)

	resp, result := doJSON(t, app, "GET", "/api/courses/"+courseID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	stages := result["stages"].([]interface{})
	assert.Equal(t, true, stages[1].(map[string]interface{})["accessible"])
	assert.Equal(t, true, stages[2].(map[string]interface{})["accessible"])
}

func TestCompleteUnknownStage(t *testing.T) {
	app := setupTestApp(t)
	token := registerUser(t, app, "Alex Doe", "alex@example.com")

	resp, result := doJSON(t, app, "POST", "/api/stages/no-such-stage/complete", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Stage not found", result["error"])
}

func TestLinkValidation(t *testing.T) {
	app := setupTestApp(t)
	token := registerUser(t, app, "Alex Doe", "alex@example.com")

	courseID, stageIDs := createCourseWithStages(t, app, token, 10)
	_, otherStageIDs := createCourseWithStages(t, app, token, 10)

	// Links may only connect stages of the same course.
	resp, _ := doJSON(t, app, "POST", "/api/courses/"+courseID+"/links", token, map[string]interface{}{
		"from_stage_id": stageIDs[0],
		"to_stage_id":   otherStageIDs[0],
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// A stage cannot depend on itself.
	resp, _ = doJSON(t, app, "POST", "/api/courses/"+courseID+"/links", token, map[string]interface{}{
		"from_stage_id": stageIDs[0],
		"to_stage_id":   stageIDs[0],
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestTeamCourseVisibility(t *testing.T) {
	app := setupTestApp(t)
	leaderToken := registerUser(t, app, "Lea Der", "lea@example.com")
	memberToken := registerUser(t, app, "Mem Ber", "mem@example.com")

	resp, result := doJSON(t, app, "POST", "/api/teams", leaderToken, map[string]interface{}{
		"name": "Backend Guild",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	teamID := result["team"].(map[string]interface{})["id"].(string)

	resp, result = doJSON(t, app, "POST", "/api/courses", leaderToken, map[string]interface{}{
		"title":   "Internal Onboarding",
		"mode":    "team",
		"team_id": teamID,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	courseID := result["course"].(map[string]interface{})["id"].(string)

	// Outsiders cannot open a team course.
	resp, _ = doJSON(t, app, "GET", "/api/courses/"+courseID, memberToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// After joining the team they can.
	resp, _ = doJSON(t, app, "POST", "/api/teams/"+teamID+"/members", leaderToken, map[string]interface{}{
		"email": "mem@example.com",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/api/courses/"+courseID, memberToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Non-members cannot create courses for the team.
	outsiderToken := registerUser(t, app, "Out Sider", "out@example.com")
	resp, _ = doJSON(t, app, "POST", "/api/courses", outsiderToken, map[string]interface{}{
		"title":   "Sneaky Course",
		"mode":    "team",
		"team_id": teamID,
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestProfileAndOverview(t *testing.T) {
	app := setupTestApp(t)
	token := registerUser(t, app, "Alex Doe", "alex@example.com")

	_, stageIDs := createCourseWithStages(t, app, token, 40, 40)
	doJSON(t, app, "POST", "/api/stages/"+stageIDs[0]+"/complete", token, nil)

	resp, result := doJSON(t, app, "GET", "/api/user/profile", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(40), result["xp"])
	assert.Equal(t, float64(1), result["level"])
	assert.Equal(t, float64(100), result["next_level_xp"])

	resp, result = doJSON(t, app, "GET", "/api/progress/overview", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	courses := result["courses"].([]interface{})
	require.Len(t, courses, 1)
	summary := courses[0].(map[string]interface{})
	assert.Equal(t, float64(2), summary["total_stages"])
	assert.Equal(t, float64(1), summary["completed_stages"])
	assert.Equal(t, float64(0), result["completed_courses"])
}
