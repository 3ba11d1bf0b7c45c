package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listNotifications returns the caller's notifications, newest first
func listNotifications(c *gin.Context) {
	userID := c.GetUint("user_id")

	notifications, err := svc.Notifications.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
	})
}

// unreadNotificationCount returns the caller's unread count
func unreadNotificationCount(c *gin.Context) {
	userID := c.GetUint("user_id")

	count, err := svc.Notifications.UnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// markNotificationRead marks one of the caller's notifications as read.
// Foreign ids silently affect nothing.
func markNotificationRead(c *gin.Context) {
	userID := c.GetUint("user_id")
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := svc.Notifications.MarkRead(userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
}

// markAllNotificationsRead marks all of the caller's notifications as read
func markAllNotificationsRead(c *gin.Context) {
	userID := c.GetUint("user_id")

	if err := svc.Notifications.MarkAllRead(userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All notifications marked as read"})
}
