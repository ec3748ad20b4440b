package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fieldroute/backend/internal/models"
)

const notificationColumns = `id, user_id, type, title, message, reference_id, is_read, created_at`

func collectNotifications(rows pgx.Rows) ([]models.Notification, error) {
	defer rows.Close()
	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.ReferenceID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) InsertNotification(ctx context.Context, n models.Notification) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO notifications (user_id, type, title, message, reference_id, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.UserID, n.Type, n.Title, n.Message, n.ReferenceID, n.IsRead, n.CreatedAt)
	return err
}

func (s *Store) ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&count)
	return count, err
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID int64) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
