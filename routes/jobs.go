package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"repairconnect-server/middleware"
	"repairconnect-server/models"
)

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// createJob creates a new pending service request owned by the caller
func createJob(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !user.IsCustomer() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Only customers can create service requests"})
		return
	}

	var req models.ServiceRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	request, err := svc.Jobs.Create(user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"message":         "Service request created",
		"service_request": request,
	})
}

// listMyJobs returns the requests relevant to the caller's role
func listMyJobs(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	requests, err := svc.Jobs.ListMine(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"service_requests": requests,
		"total_count":      len(requests),
	})
}

// listAvailableJobs returns unclaimed pending requests for providers
func listAvailableJobs(c *gin.Context) {
	requests, err := svc.Jobs.ListAvailable()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"available_requests": requests,
		"total_count":        len(requests),
	})
}

// getJob returns one request if the caller may see it
func getJob(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	request, err := svc.Jobs.Get(user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "service_request": request})
}

// editJob lets the owner edit a request while it is still pending
func editJob(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var edit models.ServiceRequestEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	request, err := svc.Jobs.Edit(user, id, edit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Service request updated",
		"service_request": request,
	})
}

// changeJobStatus is the single entry point for every lifecycle transition:
// take, start, pause, resume, finish, close, cancel, and admin overrides.
func changeJobStatus(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	request, err := svc.Jobs.Transition(user, id, models.ServiceRequestStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Status updated",
		"service_request": request,
	})
}

// listJobUpdates returns the progress feed for a request
func listJobUpdates(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	updates, err := svc.Updates.List(user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"updates":     updates,
		"total_count": len(updates),
	})
}

// postJobUpdate posts a progress note, optionally with an image. Accepts
// multipart form data (message + image file) so providers can attach photos
// straight from the job site.
func postJobUpdate(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	message := c.PostForm("message")

	var imageURL *string
	if header, err := c.FormFile("image"); err == nil && header != nil {
		url, err := svc.Uploads.Store(c.Request.Context(), header, "job_updates/"+strconv.Itoa(int(id)))
		if err != nil {
			respondError(c, err)
			return
		}
		imageURL = &url
	}

	update, err := svc.Updates.Post(user, id, message, imageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Update posted",
		"update":  update,
	})
}

// createInvoice issues an invoice against a completed job
func createInvoice(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.InvoiceCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	invoice, err := svc.Invoices.Create(user, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Invoice created",
		"invoice": invoice,
	})
}
