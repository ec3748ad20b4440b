package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fieldroute/backend/internal/models"
)

const storeColumns = `id, name, COALESCE(address, ''), latitude, longitude, qr_code, is_active, created_at, updated_at`

func scanStoreRow(row pgx.Row) (*models.Store, error) {
	var st models.Store
	err := row.Scan(&st.ID, &st.Name, &st.Address, &st.Latitude, &st.Longitude, &st.QRCode, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

func (s *Store) FindStore(ctx context.Context, id int64) (*models.Store, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
	return scanStoreRow(row)
}

func (s *Store) FindStoreByQR(ctx context.Context, qrCode string) (*models.Store, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE qr_code = $1`, qrCode)
	return scanStoreRow(row)
}

func (s *Store) InsertStore(ctx context.Context, st models.Store) (*models.Store, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO stores (name, address, latitude, longitude, qr_code, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+storeColumns,
		st.Name, st.Address, st.Latitude, st.Longitude, st.QRCode, st.IsActive, st.CreatedAt)
	return scanStoreRow(row)
}

func (s *Store) ListStores(ctx context.Context) ([]models.Store, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Store
	for rows.Next() {
		var st models.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.Address, &st.Latitude, &st.Longitude, &st.QRCode, &st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

const dealerColumns = `id, name, COALESCE(last_name, ''), email, role, is_active, COALESCE(push_token, ''), created_at`

func (s *Store) FindDealer(ctx context.Context, id int64) (*models.Dealer, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+dealerColumns+` FROM users WHERE id = $1`, id)

	var d models.Dealer
	err := row.Scan(&d.ID, &d.Name, &d.LastName, &d.Email, &d.Role, &d.IsActive, &d.PushToken, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (s *Store) ListAdmins(ctx context.Context) ([]models.Dealer, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+dealerColumns+` FROM users WHERE role = $1 AND is_active ORDER BY id ASC`,
		models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Dealer
	for rows.Next() {
		var d models.Dealer
		if err := rows.Scan(&d.ID, &d.Name, &d.LastName, &d.Email, &d.Role, &d.IsActive, &d.PushToken, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
