package models

// User is the profile the backend returns on login. The client keeps it next to
// the bearer token and never edits it.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsExpert bool   `json:"is_expert"`
}

