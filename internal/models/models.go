package models

// Class represents a named roster of students owned by a user
type Class struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Students      []string `json:"students"`
	CurrentWinner string   `json:"current_winner,omitempty"`
}

// RankingEntry is one recorded winner in a scope's history
type RankingEntry struct {
	Name string `json:"name"`
	TS   int64  `json:"ts"` // epoch millis
}

// RankingRow is a labeled entry for display: W1, W2, ... by ascending ts
type RankingRow struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	TS    int64  `json:"ts"`
}

// UserState is the per-user global state document
type UserState struct {
	Names        []string                  `json:"names"`
	FixedWinner  string                    `json:"fixed_winner,omitempty"`
	RankingStore map[string][]RankingEntry `json:"ranking_store"`
}

// User identifies a signed-in user
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

// GlobalStats is the single global-aggregate document. Counts feed the
// usage notice only; selection logic never depends on them.
type GlobalStats struct {
	ClassCount   int `json:"class_count"`
	StudentCount int `json:"student_count"`
	MVPCount     int `json:"mvp_count"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
