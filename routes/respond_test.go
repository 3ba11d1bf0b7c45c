package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairconnect-server/types"
)

func respond(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondErrorValidation(t *testing.T) {
	code, body := respond(t, types.NewValidationError("title cannot be empty"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "title cannot be empty", body["error"])
}

func TestRespondErrorForbidden(t *testing.T) {
	code, body := respond(t, types.NewForbiddenError("not yours"))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "not yours", body["error"])
}

func TestRespondErrorStatusConflict(t *testing.T) {
	code, body := respond(t, types.NewStatusConflictError("taken", "closed"))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "taken", body["current_status"])
	assert.Equal(t, "closed", body["requested_status"])
	assert.NotContains(t, body, "stale")
}

func TestRespondErrorStaleEdit(t *testing.T) {
	code, body := respond(t, types.NewStaleEditError())
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, true, body["stale"])
	assert.NotContains(t, body, "current_status")
}

func TestRespondErrorNotFound(t *testing.T) {
	code, body := respond(t, &types.NotFoundError{Entity: "service request", ID: 7})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "service request 7 not found", body["error"])
}

func TestRespondErrorTransient(t *testing.T) {
	code, body := respond(t, &types.TransientError{Message: "payment gateway unreachable"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, true, body["retryable"])
	assert.Equal(t, "payment gateway unreachable", body["error"])
}

func TestRespondErrorUnknownFallsBackTo500(t *testing.T) {
	code, body := respond(t, errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["error"])
}
