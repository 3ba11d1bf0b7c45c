package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"repairconnect-server/database"
	"repairconnect-server/middleware"
	"repairconnect-server/models"
)

func splitSkills(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

// getProviderProfile returns the caller's provider profile
func getProviderProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var settings models.ProviderSettings
	database.DB.Where("user_id = ?", user.ID).First(&settings)

	photo := user.PhotoURL
	if settings.PhotoURL != nil {
		photo = settings.PhotoURL
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"status": user.Status,
		"skills": splitSkills(user.Skills),
		"photo":  photo,
	})
}

// updateProviderProfile saves the provider's trade list. The users row and
// the provider_settings row are written in one transaction so they cannot
// diverge.
func updateProviderProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req models.ProviderProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	skills := strings.Join(req.Skills, ",")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("skills", skills).Error; err != nil {
			return err
		}
		settings := models.ProviderSettings{UserID: user.ID, Skills: skills, UpdatedAt: time.Now()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"skills", "updated_at"}),
		}).Create(&settings).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated",
		"skills":  splitSkills(skills),
	})
}

// uploadProviderPhoto stores a profile photo and saves its URL
func uploadProviderPhoto(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	header, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No photo provided"})
		return
	}

	url, err := svc.Uploads.Store(c.Request.Context(), header, "providers/"+strconv.Itoa(int(user.ID)))
	if err != nil {
		respondError(c, err)
		return
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("photo_url", url).Error; err != nil {
			return err
		}
		settings := models.ProviderSettings{UserID: user.ID, PhotoURL: &url, UpdatedAt: time.Now()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"photo_url", "updated_at"}),
		}).Create(&settings).Error
	})
	if txErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "photo_url": url})
}

// providerDashboard bundles what a provider sees on login: open pending
// jobs to claim, their assigned jobs, and the invoices they issued.
func providerDashboard(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	available, err := svc.Jobs.ListAvailable()
	if err != nil {
		respondError(c, err)
		return
	}

	mine, err := svc.Jobs.ListMine(user)
	if err != nil {
		respondError(c, err)
		return
	}

	invoices, err := svc.Invoices.List(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"available_jobs": available,
		"my_jobs":        mine,
		"invoices":       invoices,
	})
}
