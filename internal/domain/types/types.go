// Package types contains common types used across the application
package types

// ScoreRow represents one participant's line on a race scoreboard
type ScoreRow struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Winner bool   `json:"winner"`
}
