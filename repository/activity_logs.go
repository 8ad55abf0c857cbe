package repository

import (
	"context"
	"fmt"

	"easy-website/models"
)

// InsertActivityLog records an audit trail entry. Callers treat failures as
// non-fatal; the request that triggered the entry has already succeeded.
func (r *Repository) InsertActivityLog(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (user_id, action, resource_type, description, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, entry.UserID, entry.Action, entry.ResourceType,
		entry.Description, entry.IPAddress, entry.UserAgent).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

// ListRecentActivity returns the newest audit entries, capped at limit.
func (r *Repository) ListRecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, user_id, action, COALESCE(resource_type, ''), COALESCE(description, ''),
			COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM activity_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityLog
	for rows.Next() {
		var e models.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.ResourceType, &e.Description,
			&e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
