package services

import "github.com/lanzath/authapi/internal/server/models"

type loginStage int

const (
	stageStart loginStage = iota
	stageCredentialsChecked
	stageTokenIssued
	stageResponded
	stageRejected
)

func (s loginStage) String() string {
	switch s {
	case stageStart:
		return "start"
	case stageCredentialsChecked:
		return "credentials_checked"
	case stageTokenIssued:
		return "token_issued"
	case stageResponded:
		return "responded"
	case stageRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// loginAttempt is the state of one login call. It lives on the stack of
// SessionService.Login and is never shared between requests.
//
// Start -> CredentialsChecked -> TokenIssued -> Responded, or any -> Rejected.
type loginAttempt struct {
	stage      loginStage
	failedAt   loginStage
	rememberMe bool
	userID     string
	token      *models.AccessToken
}

func (a *loginAttempt) credentialsChecked(userID string) {
	if a.stage == stageStart {
		a.stage = stageCredentialsChecked
		a.userID = userID
	}
}

func (a *loginAttempt) tokenIssued(t *models.AccessToken) {
	if a.stage == stageCredentialsChecked {
		a.stage = stageTokenIssued
		a.token = t
	}
}

func (a *loginAttempt) responded() {
	if a.stage == stageTokenIssued {
		a.stage = stageResponded
	}
}

func (a *loginAttempt) reject() {
	if a.stage != stageResponded && a.stage != stageRejected {
		a.failedAt = a.stage
		a.stage = stageRejected
	}
}
