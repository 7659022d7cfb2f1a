package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novamart/admin-console/internal/app/models"
)

func TestResolveAuthorizedBranches(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want Outcome
	}{
		{
			name: "admin gets the console",
			user: &models.User{ID: "u1", Role: models.RoleAdmin},
			want: OutcomeConsole,
		},
		{
			name: "approved seller gets the console",
			user: &models.User{ID: "u2", Role: models.RoleSeller, VerificationStatus: models.VerificationApproved},
			want: OutcomeConsole,
		},
		{
			name: "pending seller gets the review page",
			user: &models.User{ID: "u3", Role: models.RoleSeller, VerificationStatus: models.VerificationPending},
			want: OutcomePendingReview,
		},
		{
			name: "anonymous goes to sign-in",
			user: nil,
			want: OutcomeSignIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.user, true))
		})
	}
}

// Every role/status combination outside {admin, seller+pending,
// seller+approved} must land on sign-in.
func TestResolveFailClosed(t *testing.T) {
	roles := []models.Role{
		models.RoleAdmin,
		models.RoleSeller,
		models.RoleBuyer,
		models.Role(""),
		models.Role("superadmin"),
		models.Role("ADMIN"),
		models.Role("moderator"),
	}
	statuses := []models.VerificationStatus{
		models.VerificationPending,
		models.VerificationApproved,
		models.VerificationRejected,
		models.VerificationStatus(""),
		models.VerificationStatus("unknown"),
		models.VerificationStatus("APPROVED"),
	}

	authorized := func(role models.Role, status models.VerificationStatus) bool {
		if role == models.RoleAdmin {
			return true
		}
		return role == models.RoleSeller &&
			(status == models.VerificationPending || status == models.VerificationApproved)
	}

	for _, role := range roles {
		for _, status := range statuses {
			name := fmt.Sprintf("role=%q/status=%q", role, status)
			t.Run(name, func(t *testing.T) {
				user := &models.User{ID: "u1", Role: role, VerificationStatus: status}
				got := Resolve(user, true)

				if authorized(role, status) {
					assert.NotEqual(t, OutcomeSignIn, got)
				} else {
					assert.Equal(t, OutcomeSignIn, got, "unrecognized combination must fail closed")
				}
			})
		}
	}
}

// Before rehydration completes nothing may be served, regardless of user.
func TestResolvePreInitialization(t *testing.T) {
	users := []*models.User{
		nil,
		{ID: "u1", Role: models.RoleAdmin},
		{ID: "u2", Role: models.RoleSeller, VerificationStatus: models.VerificationApproved},
		{ID: "u3", Role: models.RoleSeller, VerificationStatus: models.VerificationPending},
		{ID: "u4", Role: models.Role("garbage")},
	}

	for _, user := range users {
		assert.Equal(t, OutcomeNone, Resolve(user, false))
	}
}

func TestResolveIsTotal(t *testing.T) {
	// The verification status of non-sellers is ignored entirely.
	admin := &models.User{ID: "u1", Role: models.RoleAdmin, VerificationStatus: models.VerificationRejected}
	assert.Equal(t, OutcomeConsole, Resolve(admin, true))

	buyer := &models.User{ID: "u2", Role: models.RoleBuyer, VerificationStatus: models.VerificationApproved}
	assert.Equal(t, OutcomeSignIn, Resolve(buyer, true))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "console", OutcomeConsole.String())
	assert.Equal(t, "sign_in", OutcomeSignIn.String())
	assert.Equal(t, "pending_review", OutcomePendingReview.String())
	assert.Equal(t, "none", OutcomeNone.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
