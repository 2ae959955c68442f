package routes

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	cfg   *config.Config
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		UploadsDir:      t.TempDir(),
		GeneratorAPIURL: "http://localhost:0/v1/generate",
		ReconcileCron:   "@hourly",
	}

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	require.NoError(t, utils.SeedDisciplines(db))

	app := fiber.New()
	SetupRoutes(app, db, cfg, log.New(io.Discard, "", 0))

	env := &testEnv{app: app, db: db, cfg: cfg}
	env.token = env.register(t, "teacher", "teacher@example.com", "secret123")
	return env
}

func (e *testEnv) register(t *testing.T, username, email, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{
		"Username":     username,
		"Email":        email,
		"PasswordHash": password,
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result["token"].(string)
}

func (e *testEnv) request(t *testing.T, method, path string, payload interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 && data[0] == '{' {
		json.Unmarshal(data, &result)
	}
	return resp.StatusCode, result
}

func publishPayload() map[string]interface{} {
	photo := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	return map[string]interface{}{
		"draft": map[string]interface{}{
			"title":         "Statistics Basics",
			"description":   "From lecture photos",
			"discipline":    "statistics",
			"concepts":      []string{"Mean", "Variance"},
			"tags":          []string{"intro"},
			"estimatedTime": 45,
			"lessons": []map[string]interface{}{
				{"title": "L1", "content": "mean"},
				{"title": "L2", "content": "variance"},
			},
			"consolidation": map[string]interface{}{"action": "create-new"},
		},
		"photos": []map[string]interface{}{
			{"filename": "board.jpg", "mimeType": "image/jpeg", "base64": photo, "fileSize": 15},
		},
	}
}

func TestPublishFlow(t *testing.T) {
	env := newTestEnv(t)

	status, result := env.request(t, "POST", "/api/modules/publish", publishPayload(), env.token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Module published", result["message"])

	module := result["module"].(map[string]interface{})
	assert.Equal(t, "statistics-basics", module["slug"])
	assert.NotNil(t, result["photo_group"])

	// The published module is readable by slug.
	status, result = env.request(t, "GET", "/api/modules/statistics-basics", nil, env.token)
	require.Equal(t, fiber.StatusOK, status)
	module = result["module"].(map[string]interface{})
	assert.Equal(t, "Statistics Basics", module["title"])

	// The discipline counter reflects the publish.
	var discipline models.Discipline
	require.NoError(t, env.db.First(&discipline, "id = ?", "statistics").Error)
	assert.Equal(t, 1, discipline.ModuleCount)

	// The ledger recorded the module, the group and the photo.
	var contribs int64
	require.NoError(t, env.db.Model(&models.UserContribution{}).Count(&contribs).Error)
	assert.EqualValues(t, 3, contribs)
}

func TestPublishAppendToMissingTargetRejected(t *testing.T) {
	env := newTestEnv(t)

	payload := publishPayload()
	draft := payload["draft"].(map[string]interface{})
	draft["consolidation"] = map[string]interface{}{
		"action":           "append-to",
		"targetModuleSlug": "does-not-exist",
	}

	status, result := env.request(t, "POST", "/api/modules/publish", payload, env.token)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)

	details := result["details"].(map[string]interface{})
	assert.Equal(t, "target_not_found", details["reason"])
}

func TestAdminDeleteReconcilesCounter(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(t, "POST", "/api/modules/publish", publishPayload(), env.token)
	require.Equal(t, fiber.StatusOK, status)

	// A regular user cannot delete.
	status, _ = env.request(t, "DELETE", "/api/admin/modules/statistics-basics", nil, env.token)
	require.Equal(t, fiber.StatusForbidden, status)

	// Promote and retry.
	require.NoError(t, env.db.Model(&models.User{}).
		Where("username = ?", "teacher").Update("role", "admin").Error)

	status, _ = env.request(t, "DELETE", "/api/admin/modules/statistics-basics", nil, env.token)
	require.Equal(t, fiber.StatusOK, status)

	var discipline models.Discipline
	require.NoError(t, env.db.First(&discipline, "id = ?", "statistics").Error)
	assert.Equal(t, 0, discipline.ModuleCount)
}

func TestModulesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(t, "GET", "/api/modules/", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestEmptyListingsAreArrays(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/modules/", "/api/user/modules", "/api/user/contributions"} {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", env.token)
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(bytes.TrimSpace(data)), path)
	}
}

func TestDisciplineCatalog(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/api/disciplines/", nil)
	req.Header.Set("Authorization", env.token)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var catalog []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&catalog))
	assert.NotEmpty(t, catalog)
	for _, d := range catalog {
		assert.Contains(t, d, "module_count")
	}
}
