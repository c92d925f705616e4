package handlers

// LoginRequest represents a sign-in attempt
type LoginRequest struct {
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

// WinnerRequest sets or clears the preset winner (null/empty clears)
type WinnerRequest struct {
	Name *string `json:"name"`
}

// NamesRequest replaces the global name list from newline-separated text
type NamesRequest struct {
	Text string `json:"text"`
}

// ShuffleSecondsRequest configures the shuffle duration
type ShuffleSecondsRequest struct {
	Seconds int `json:"seconds"`
}

// SelectClassRequest switches the active scope (null/empty id = global)
type SelectClassRequest struct {
	ID *string `json:"id"`
}

// ClassCreateRequest represents a request to create a class.
// Confirm acknowledges a duplicate-name warning and creates anyway.
type ClassCreateRequest struct {
	Name     string   `json:"name"`
	Students []string `json:"students"`
	Confirm  bool     `json:"confirm,omitempty"`
}

// ClassUpdateRequest replaces a class roster
type ClassUpdateRequest struct {
	Students []string `json:"students"`
}
