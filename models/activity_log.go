package models

import "time"

// ActivityLog records an audited admin action. Writes are fire-and-forget:
// a failed insert never fails the primary request.
type ActivityLog struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	Description  string    `json:"description,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
