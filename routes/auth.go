package routes

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"repairconnect-server/config"
	"repairconnect-server/database"
	"repairconnect-server/models"
	"repairconnect-server/utils"
)

// register creates a new customer or provider account. Providers start in
// pending status until an admin approves them.
func register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Registration failed"})
		return
	}

	status := models.UserStatusActive
	if req.Role == string(models.RoleProvider) {
		status = models.UserStatusPending
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
		Status:       status,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		log.Printf("❌ Registration failed for %s: %v", req.Email, err)
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Email is already registered"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered",
		"user": gin.H{
			"id":     user.ID,
			"email":  user.Email,
			"role":   user.Role,
			"status": user.Status,
		},
	})
}

// login checks credentials and account standing before issuing a token.
// Expired suspensions reactivate the account on the spot.
func login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	if user.Status == models.UserStatusBanned {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Your account has been permanently banned"})
		return
	}

	if user.Status == models.UserStatusSuspended {
		if user.SuspendedUntil != nil && user.SuspendedUntil.After(time.Now()) {
			remaining := time.Until(*user.SuspendedUntil).Round(time.Hour)
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Your account is suspended for another " + remaining.String(),
			})
			return
		}
		// Suspension expired, reactivate
		database.DB.Model(&user).Updates(map[string]interface{}{
			"status":          models.UserStatusActive,
			"suspended_until": gorm.Expr("NULL"),
		})
		user.Status = models.UserStatusActive
		user.SuspendedUntil = nil
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// adminLogin authenticates the operator account against ADMIN_EMAIL and
// ADMIN_PASSWORD. The matching users row is created on first login so the
// admin surface is reachable on a fresh database.
func adminLogin(c *gin.Context) {
	cfg := config.AppConfig.Admin
	if cfg.Email == "" || cfg.Password == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Admin login is not configured"})
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.Email != cfg.Email || req.Password != cfg.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	var admin models.User
	err := database.DB.Where("email = ? AND role = ?", cfg.Email, models.RoleAdmin).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, hashErr := utils.HashPassword(cfg.Password)
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Admin login failed"})
			return
		}
		admin = models.User{
			Name:         "Administrator",
			Email:        cfg.Email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			Status:       models.UserStatusActive,
		}
		if createErr := database.DB.Create(&admin).Error; createErr != nil {
			log.Printf("❌ Failed to create admin account: %v", createErr)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Admin login failed"})
			return
		}
		log.Printf("✅ Admin account created for %s", cfg.Email)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Admin login failed"})
		return
	}

	token, err := utils.GenerateToken(admin.ID, string(models.RoleAdmin))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Admin login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// me returns the authenticated user's profile
func me(c *gin.Context) {
	userID := c.GetUint("user_id")

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"role":   user.Role,
		"status": user.Status,
	})
}
