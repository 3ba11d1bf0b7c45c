package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"repairconnect-server/config"
	"repairconnect-server/database"
	"repairconnect-server/models"
	"repairconnect-server/utils"
)

// setupRouteTestDB points the global database handle at TEST_DB_URL and wipes
// the tables. Skips when the variable is unset.
func setupRouteTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	url := os.Getenv("TEST_DB_URL")
	if url == "" {
		t.Skip("TEST_DB_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Exec(
		"TRUNCATE users, provider_settings, service_requests, job_updates, invoices, notifications RESTART IDENTITY CASCADE",
	).Error)

	database.DB = db
	return db
}

func postAdminLogin(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAdminLogin(t *testing.T) {
	db := setupRouteTestDB(t)

	t.Setenv("ADMIN_EMAIL", "ops@repairconnect.test")
	t.Setenv("ADMIN_PASSWORD", "open-sesame")
	config.Load()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/admin/login", adminLogin)

	// Wrong credentials never touch the database
	w := postAdminLogin(router, `{"email":"ops@repairconnect.test","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)

	// First successful login seeds the admin row and issues an admin token
	w = postAdminLogin(router, `{"email":"ops@repairconnect.test","password":"open-sesame"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	claims, err := utils.VerifyToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "ops@repairconnect.test").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, models.UserStatusActive, admin.Status)
	assert.Equal(t, admin.ID, claims.UserID)

	// Second login reuses the row instead of duplicating it
	w = postAdminLogin(router, `{"email":"ops@repairconnect.test","password":"open-sesame"}`)
	require.Equal(t, http.StatusOK, w.Code)

	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAdminLoginDisabledWithoutCredentials(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	config.Load()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/admin/login", adminLogin)

	w := postAdminLogin(router, `{"email":"a@b.c","password":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
