package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldroute/backend/internal/models"
	"github.com/fieldroute/backend/internal/service"
)

const visitColumns = `id, dealer_id, store_id, assignment_id, status, origin, visit_date, scheduled_date,
	check_in_at, check_out_at, check_in_lat, check_in_lng, check_out_lat, check_out_lng,
	COALESCE(notes, ''), is_active, created_at, updated_at`

func scanVisit(row pgx.Row) (*models.Visit, error) {
	var v models.Visit
	err := row.Scan(&v.ID, &v.DealerID, &v.StoreID, &v.AssignmentID, &v.Status, &v.Origin,
		&v.VisitDate, &v.ScheduledDate, &v.CheckInAt, &v.CheckOutAt,
		&v.CheckInLat, &v.CheckInLng, &v.CheckOutLat, &v.CheckOutLng,
		&v.Notes, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func collectVisits(rows pgx.Rows) ([]models.Visit, error) {
	defer rows.Close()
	var out []models.Visit
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.ID, &v.DealerID, &v.StoreID, &v.AssignmentID, &v.Status, &v.Origin,
			&v.VisitDate, &v.ScheduledDate, &v.CheckInAt, &v.CheckOutAt,
			&v.CheckInLat, &v.CheckInLng, &v.CheckOutLat, &v.CheckOutLng,
			&v.Notes, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) FindVisit(ctx context.Context, id int64) (*models.Visit, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id)
	return scanVisit(row)
}

func (s *Store) FindByDealerAndDate(ctx context.Context, dealerID int64, date time.Time) ([]models.Visit, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+visitColumns+` FROM visits
		WHERE dealer_id = $1 AND visit_date = $2 ORDER BY id ASC`, dealerID, date)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}

func (s *Store) FindByStoreAndDate(ctx context.Context, storeID int64, date time.Time) ([]models.Visit, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+visitColumns+` FROM visits
		WHERE store_id = $1 AND visit_date = $2 ORDER BY id ASC`, storeID, date)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}

func (s *Store) FindOpenByDealer(ctx context.Context, dealerID int64) ([]models.Visit, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+visitColumns+` FROM visits
		WHERE dealer_id = $1 AND check_out_at IS NULL AND status IN ($2, $3)
		ORDER BY id ASC`, dealerID, models.VisitPlanned, models.VisitCheckedIn)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}

func (s *Store) HasOpenCheckedInVisit(ctx context.Context, dealerID, storeID int64) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM visits
			WHERE dealer_id = $1 AND store_id = $2 AND check_out_at IS NULL AND status = $3
		)`, dealerID, storeID, models.VisitCheckedIn).Scan(&exists)
	return exists, err
}

func (s *Store) FindPlannedByQRAndDealer(ctx context.Context, qrCode string, dealerID int64, date time.Time) ([]models.Visit, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+visitColumnsPrefixed("v")+` FROM visits v
		JOIN stores st ON st.id = v.store_id
		WHERE st.qr_code = $1 AND v.dealer_id = $2 AND v.visit_date = $3 AND v.status = $4
		ORDER BY v.created_at ASC, v.id ASC`, qrCode, dealerID, date, models.VisitPlanned)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}

func (s *Store) FindByDealerStoreDateStatus(ctx context.Context, dealerID, storeID int64, date time.Time, status string) (*models.Visit, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT `+visitColumns+` FROM visits
		WHERE dealer_id = $1 AND store_id = $2 AND visit_date = $3 AND status = $4
		ORDER BY id ASC LIMIT 1`, dealerID, storeID, date, status)
	return scanVisit(row)
}

func (s *Store) InsertVisit(ctx context.Context, v models.Visit) (*models.Visit, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO visits (dealer_id, store_id, assignment_id, status, origin, visit_date, scheduled_date,
			check_in_at, check_out_at, check_in_lat, check_in_lng, check_out_lat, check_out_lng,
			notes, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING `+visitColumns,
		v.DealerID, v.StoreID, v.AssignmentID, v.Status, v.Origin, v.VisitDate, v.ScheduledDate,
		v.CheckInAt, v.CheckOutAt, v.CheckInLat, v.CheckInLng, v.CheckOutLat, v.CheckOutLng,
		v.Notes, v.IsActive, v.CreatedAt)
	return scanVisit(row)
}

func (s *Store) UpdateVisit(ctx context.Context, v models.Visit) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE visits
		SET status = $1, visit_date = $2, scheduled_date = $3,
			check_in_at = $4, check_out_at = $5,
			check_in_lat = $6, check_in_lng = $7, check_out_lat = $8, check_out_lng = $9,
			notes = $10, is_active = $11, updated_at = $12
		WHERE id = $13`,
		v.Status, v.VisitDate, v.ScheduledDate,
		v.CheckInAt, v.CheckOutAt,
		v.CheckInLat, v.CheckInLng, v.CheckOutLat, v.CheckOutLng,
		v.Notes, v.IsActive, v.UpdatedAt, v.ID)
	return err
}

func (s *Store) DeleteVisit(ctx context.Context, id int64) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
	return err
}

func (s *Store) ListVisits(ctx context.Context) ([]models.Visit, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+visitColumns+` FROM visits ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}

func (s *Store) FilterVisits(ctx context.Context, f service.VisitFilter) ([]models.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits`
	var args []any
	wheres := []string{"is_active"}
	if f.DealerID != nil {
		args = append(args, *f.DealerID)
		wheres = append(wheres, fmt.Sprintf("dealer_id = $%d", len(args)))
	}
	if f.StoreID != nil {
		args = append(args, *f.StoreID)
		wheres = append(wheres, fmt.Sprintf("store_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		wheres = append(wheres, fmt.Sprintf("visit_date >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		wheres = append(wheres, fmt.Sprintf("visit_date <= $%d", len(args)))
	}
	query += " WHERE " + strings.Join(wheres, " AND ") + " ORDER BY visit_date DESC, id ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}

func visitColumnsPrefixed(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.dealer_id, %[1]s.store_id, %[1]s.assignment_id, %[1]s.status, %[1]s.origin,
		%[1]s.visit_date, %[1]s.scheduled_date, %[1]s.check_in_at, %[1]s.check_out_at,
		%[1]s.check_in_lat, %[1]s.check_in_lng, %[1]s.check_out_lat, %[1]s.check_out_lng,
		COALESCE(%[1]s.notes, ''), %[1]s.is_active, %[1]s.created_at, %[1]s.updated_at`, alias)
}
