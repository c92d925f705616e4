package handlers

import "github.com/abrezinsky/mvpboard/internal/models"

// LoginResponse is the response for a successful sign-in
type LoginResponse struct {
	User models.User `json:"user"`
}

// MeResponse reports the signed-in user
type MeResponse struct {
	User models.User `json:"user"`
}

// NamesResponse is the response for a name-list replacement
type NamesResponse struct {
	Names []string `json:"names"`
}

// ShuffleSecondsResponse echoes the clamped shuffle duration
type ShuffleSecondsResponse struct {
	Seconds int `json:"seconds"`
}

// ClassResponse is the JSON response for class operations
type ClassResponse struct {
	Class models.Class `json:"class"`
}

// ClassListResponse lists classes with the active selection
type ClassListResponse struct {
	Classes         []models.Class `json:"classes"`
	SelectedClassID string         `json:"selected_class_id,omitempty"`
}
