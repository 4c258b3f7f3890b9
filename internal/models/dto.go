package models

import "encoding/json"

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse is the success body of POST /api/login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the body of POST /api/register. ConfirmPassword keeps the
// camelCase name the backend reads.
type RegisterRequest struct {
	Username        string `json:"username" form:"username" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required"`
	IsExpert        bool   `json:"is_expert" form:"is_expert"`
}

// ReviewRequest is the body of POST /api/thesis/{id}/review. A nil Score is
// sent as JSON null; range checks belong to the backend, so Score carries the
// digits as typed, however large.
type ReviewRequest struct {
	Score    *json.Number `json:"score"`
	Comments string       `json:"comments"`
}

// ErrorResponse is the failure body every backend endpoint uses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SubmitThesisForm holds the text fields of the thesis upload dialog.
type SubmitThesisForm struct {
	Title   string `form:"title" validate:"required"`
	Content string `form:"content" validate:"required"`
}

// ReviewForm is the inline review form. Score stays raw text until the
// controller parses it.
type ReviewForm struct {
	Score    string `form:"score" validate:"required"`
	Comments string `form:"comments"`
}
