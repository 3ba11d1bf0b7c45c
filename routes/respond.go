package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"repairconnect-server/types"
)

// respondError maps the service error taxonomy onto HTTP statuses. Every
// rejected transition carries the current and requested status so the
// caller can see exactly what was refused.
func respondError(c *gin.Context, err error) {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validationErr.Message})
		return
	}

	var forbiddenErr *types.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": forbiddenErr.Message})
		return
	}

	var conflictErr *types.ConflictError
	if errors.As(err, &conflictErr) {
		body := gin.H{"success": false, "error": conflictErr.Message}
		if conflictErr.CurrentStatus != "" {
			body["current_status"] = conflictErr.CurrentStatus
			body["requested_status"] = conflictErr.RequestedStatus
		}
		if conflictErr.StaleEdit {
			body["stale"] = true
		}
		c.JSON(http.StatusConflict, body)
		return
	}

	var notFoundErr *types.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFoundErr.Error()})
		return
	}

	var transientErr *types.TransientError
	if errors.As(err, &transientErr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": transientErr.Message, "retryable": true})
		return
	}

	log.Printf("❌ Unexpected error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
}
