package controller

import "github.com/SAP-F-2025/thesis-review-portal/internal/models"

// Dialog identifies a modal form of the page.
type Dialog string

const (
	DialogLogin        Dialog = "login"
	DialogRegister     Dialog = "register"
	DialogSubmitThesis Dialog = "submit_thesis"
)

// View is what the controller drives in response to a user action. The web
// handlers implement it per request; implementations must be safe for
// concurrent use.
type View interface {
	Notify(message string)
	SetNavigation(authenticated bool, user *models.User)
	ShowThesisList(records []models.Thesis)
	ClearThesisList()
	ShowStats(stats *models.Stats)
	CloseDialog(dialog Dialog)
}
