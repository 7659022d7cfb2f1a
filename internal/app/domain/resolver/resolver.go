// Package resolver decides which branch of the console an operator may see.
// The decision is a pure function of the session state; unrecognized role or
// verification combinations always land on sign-in.
package resolver

import "github.com/novamart/admin-console/internal/app/models"

// Outcome is the rendering branch picked for a session state. Every
// (user, initialized) pair maps to exactly one outcome.
type Outcome int

const (
	// OutcomeNone means rehydration has not finished yet; nothing is served.
	OutcomeNone Outcome = iota
	// OutcomeSignIn redirects to the sign-in screen.
	OutcomeSignIn
	// OutcomeConsole serves the full console shell.
	OutcomeConsole
	// OutcomePendingReview serves the restricted pending-review page.
	OutcomePendingReview
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeSignIn:
		return "sign_in"
	case OutcomeConsole:
		return "console"
	case OutcomePendingReview:
		return "pending_review"
	}
	return "unknown"
}

// Resolve maps session state to a rendering branch.
//
// Admins and approved sellers get the console; pending sellers get the
// review page; everyone else — anonymous, buyers, rejected sellers, unknown
// roles or statuses — is sent to sign-in.
func Resolve(user *models.User, initialized bool) Outcome {
	if !initialized {
		return OutcomeNone
	}
	if user == nil {
		return OutcomeSignIn
	}

	switch user.Role {
	case models.RoleAdmin:
		return OutcomeConsole
	case models.RoleSeller:
		switch user.VerificationStatus {
		case models.VerificationPending:
			return OutcomePendingReview
		case models.VerificationApproved:
			return OutcomeConsole
		}
	}

	// Fail closed.
	return OutcomeSignIn
}
