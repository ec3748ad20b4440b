package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fieldroute/backend/internal/models"
)

const assignmentColumns = `id, dealer_id, store_id, type, frequency_days, start_date, end_date, is_active, created_at`

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.ID, &a.DealerID, &a.StoreID, &a.Type, &a.FrequencyDays, &a.StartDate, &a.EndDate, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func collectAssignments(rows pgx.Rows) ([]models.Assignment, error) {
	defer rows.Close()
	var out []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.DealerID, &a.StoreID, &a.Type, &a.FrequencyDays, &a.StartDate, &a.EndDate, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) FindAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
	return scanAssignment(row)
}

func (s *Store) FindActiveByDealer(ctx context.Context, dealerID int64) ([]models.Assignment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE dealer_id = $1 AND is_active ORDER BY id ASC`, dealerID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (s *Store) FindActiveByDealerAndStore(ctx context.Context, dealerID, storeID int64) ([]models.Assignment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE dealer_id = $1 AND store_id = $2 AND is_active ORDER BY id ASC`, dealerID, storeID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (s *Store) ExistsActiveDuplicate(ctx context.Context, dealerID, storeID, excludeID int64) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM assignments
			WHERE dealer_id = $1 AND store_id = $2 AND is_active AND id <> $3
		)`, dealerID, storeID, excludeID).Scan(&exists)
	return exists, err
}

func (s *Store) InsertAssignment(ctx context.Context, a models.Assignment) (*models.Assignment, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO assignments (dealer_id, store_id, type, frequency_days, start_date, end_date, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+assignmentColumns,
		a.DealerID, a.StoreID, a.Type, a.FrequencyDays, a.StartDate, a.EndDate, a.IsActive, a.CreatedAt)
	return scanAssignment(row)
}

func (s *Store) UpdateAssignment(ctx context.Context, a models.Assignment) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE assignments
		SET dealer_id = $1, store_id = $2, type = $3, frequency_days = $4,
			start_date = $5, end_date = $6, is_active = $7
		WHERE id = $8`,
		a.DealerID, a.StoreID, a.Type, a.FrequencyDays, a.StartDate, a.EndDate, a.IsActive, a.ID)
	return err
}

func (s *Store) ListAssignments(ctx context.Context, activeOnly bool) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (s *Store) ListAssignmentsByStore(ctx context.Context, storeID int64) ([]models.Assignment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE store_id = $1 AND is_active ORDER BY id ASC`, storeID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}
