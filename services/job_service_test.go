package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairconnect-server/models"
)

func TestTransitionAllowed(t *testing.T) {
	type triple struct {
		role models.UserRole
		from models.ServiceRequestStatus
		to   models.ServiceRequestStatus
	}

	allowed := map[triple]bool{
		{models.RoleProvider, models.StatusPending, models.StatusTaken}:  true,
		{models.RoleProvider, models.StatusTaken, models.StatusOngoing}:  true,
		{models.RoleProvider, models.StatusTaken, models.StatusDone}:     true,
		{models.RoleProvider, models.StatusOngoing, models.StatusPaused}: true,
		{models.RoleProvider, models.StatusOngoing, models.StatusDone}:   true,
		{models.RoleProvider, models.StatusPaused, models.StatusOngoing}: true,
		{models.RoleProvider, models.StatusDone, models.StatusClosed}:    true,

		{models.RoleCustomer, models.StatusPending, models.StatusCancelled}: true,
		{models.RoleCustomer, models.StatusTaken, models.StatusCancelled}:   true,
	}

	// Every (role, from, to) combination must match the table exactly; the
	// loop catches both missing grants and accidental extras.
	for _, role := range []models.UserRole{models.RoleProvider, models.RoleCustomer} {
		for _, from := range models.KnownStatuses {
			for _, to := range models.KnownStatuses {
				want := allowed[triple{role, from, to}]
				got := TransitionAllowed(role, from, to)
				assert.Equal(t, want, got, "%s: %s -> %s", role, from, to)
			}
		}
	}
}

func TestTransitionAllowedAdminOverride(t *testing.T) {
	for _, from := range models.KnownStatuses {
		for _, to := range models.KnownStatuses {
			assert.True(t, TransitionAllowed(models.RoleAdmin, from, to),
				"admin: %s -> %s", from, to)
		}
	}

	assert.False(t, TransitionAllowed(models.RoleAdmin, models.StatusPending, "archived"))
	assert.False(t, TransitionAllowed(models.RoleAdmin, models.StatusPending, ""))
}

func TestTransitionAllowedTerminalStatuses(t *testing.T) {
	// closed and cancelled have no exits for non-admins
	for _, role := range []models.UserRole{models.RoleProvider, models.RoleCustomer} {
		for _, from := range []models.ServiceRequestStatus{models.StatusClosed, models.StatusCancelled} {
			for _, to := range models.KnownStatuses {
				assert.False(t, TransitionAllowed(role, from, to),
					"%s: %s -> %s should be denied", role, from, to)
			}
		}
	}
}

func TestTransitionAllowedCustomerCannotCancelAfterWorkStarts(t *testing.T) {
	for _, from := range []models.ServiceRequestStatus{
		models.StatusOngoing, models.StatusPaused, models.StatusDone,
	} {
		assert.False(t, TransitionAllowed(models.RoleCustomer, from, models.StatusCancelled),
			"customer cancel from %s should be denied", from)
	}
}

func TestTransitionAllowedUnknownRole(t *testing.T) {
	assert.False(t, TransitionAllowed("intern", models.StatusPending, models.StatusTaken))
	assert.False(t, TransitionAllowed("", models.StatusPending, models.StatusCancelled))
}

func TestTransitionAllowedSelfTransition(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleProvider, models.RoleCustomer} {
		for _, status := range models.KnownStatuses {
			assert.False(t, TransitionAllowed(role, status, status),
				"%s: %s -> itself should be denied", role, status)
		}
	}
}

func TestCheckAuthority(t *testing.T) {
	svc := &JobService{}

	customer := models.User{ID: 1, Role: models.RoleCustomer}
	provider := models.User{ID: 2, Role: models.RoleProvider}
	otherProvider := models.User{ID: 3, Role: models.RoleProvider}
	admin := models.User{ID: 4, Role: models.RoleAdmin}

	providerID := provider.ID
	assigned := &models.ServiceRequest{ID: 10, CustomerID: customer.ID, AssignedProviderID: &providerID, Status: models.StatusTaken}
	pending := &models.ServiceRequest{ID: 11, CustomerID: customer.ID, Status: models.StatusPending}

	tests := []struct {
		name    string
		actor   models.User
		request *models.ServiceRequest
		target  models.ServiceRequestStatus
		wantErr bool
	}{
		{"admin always passes", admin, assigned, models.StatusClosed, false},
		{"assigned provider passes", provider, assigned, models.StatusOngoing, false},
		{"unrelated provider rejected", otherProvider, assigned, models.StatusOngoing, true},
		{"any provider may take a pending request", otherProvider, pending, models.StatusTaken, false},
		{"late take falls through to the status check", otherProvider, assigned, models.StatusTaken, false},
		{"unassigned provider rejected for non-take", otherProvider, pending, models.StatusOngoing, true},
		{"owner passes", customer, pending, models.StatusCancelled, false},
		{"non-owner customer rejected", models.User{ID: 99, Role: models.RoleCustomer}, pending, models.StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.checkAuthority(tt.actor, tt.request, tt.target)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLateTakeSurfacesAsStatusConflict(t *testing.T) {
	svc := &JobService{}

	providerID := uint(2)
	taken := &models.ServiceRequest{ID: 10, CustomerID: 1, AssignedProviderID: &providerID, Status: models.StatusTaken}
	rival := models.User{ID: 3, Role: models.RoleProvider}

	// Authority never short-circuits a take attempt; the transition table
	// rejects it, so the rival learns which status won the race instead of
	// getting a generic forbidden.
	require.NoError(t, svc.checkAuthority(rival, taken, models.StatusTaken))
	assert.False(t, TransitionAllowed(rival.Role, taken.Status, models.StatusTaken))
}

func TestTransitionTableCoversEveryNonTerminalStatus(t *testing.T) {
	// Every non-terminal status must be exitable by someone, otherwise a
	// request could strand mid-lifecycle.
	for _, from := range models.KnownStatuses {
		if from.Terminal() {
			continue
		}
		exitable := false
		for _, role := range []models.UserRole{models.RoleProvider, models.RoleCustomer} {
			for _, to := range models.KnownStatuses {
				if TransitionAllowed(role, from, to) {
					exitable = true
				}
			}
		}
		assert.True(t, exitable, fmt.Sprintf("status %s has no exit", from))
	}
}
