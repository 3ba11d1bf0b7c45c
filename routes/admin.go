package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"repairconnect-server/database"
	"repairconnect-server/models"
)

// adminSummary returns headline counts for the admin dashboard
func adminSummary(c *gin.Context) {
	var totalUsers, totalRequests, pendingJobs int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.ServiceRequest{}).Count(&totalRequests)
	database.DB.Model(&models.ServiceRequest{}).Where("status = ?", models.StatusPending).Count(&pendingJobs)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"total_users":    totalUsers,
			"total_requests": totalRequests,
			"pending_jobs":   pendingJobs,
		},
	})
}

// adminListRequests returns every service request
func adminListRequests(c *gin.Context) {
	var requests []models.ServiceRequest
	err := database.DB.Preload("Customer").Preload("AssignedProvider").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"service_requests": requests,
		"total_count":      len(requests),
	})
}

// adminListUsers returns all users without password hashes
func adminListUsers(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("id").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// adminApproveProvider approves a pending provider account
func adminApproveProvider(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.User{}).
		Where("id = ? AND role = ?", id, models.RoleProvider).
		Update("status", models.UserStatusApproved)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to approve provider"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Provider not found or user is not a provider"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Provider approved"})
}

// adminSuspendUser suspends a user for a number of hours (default 24)
func adminSuspendUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Duration int `json:"duration"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Duration <= 0 {
		req.Duration = 24
	}

	until := time.Now().Add(time.Duration(req.Duration) * time.Hour)

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":          models.UserStatusSuspended,
		"suspended_until": until,
	})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to suspend user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	log.Printf("⚠️ User %d suspended for %dh (until %s)", id, req.Duration, until.Format(time.RFC3339))
	c.JSON(http.StatusOK, gin.H{"success": true, "suspended_until": until})
}

// adminBanUser permanently bans a user
func adminBanUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":          models.UserStatusBanned,
		"suspended_until": gorm.Expr("NULL"),
	})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to ban user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User banned"})
}

// adminActivateUser reactivates a suspended or banned user
func adminActivateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":          models.UserStatusActive,
		"suspended_until": gorm.Expr("NULL"),
	})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to reactivate user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User reactivated"})
}

// adminDeleteUser removes a user; their notifications cascade away
func adminDeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := database.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted", "id": id})
}
