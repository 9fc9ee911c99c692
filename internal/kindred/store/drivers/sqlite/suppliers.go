package sqlite

import (
	"context"
	"database/sql"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

type suppliersRepo struct {
	q dbtx
}

const supplierColumns = `id, name, slug, user_id, claim_status, created_at, updated_at`

func scanSupplier(row interface{ Scan(...any) error }) (domain.Supplier, error) {
	var s domain.Supplier
	var userID sql.NullString
	var status string
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &userID, &status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.UserID = mapNullStringPtr(userID)
	s.ClaimStatus = domain.ClaimStatus(status)
	return s, nil
}

func (r *suppliersRepo) CreateSupplier(ctx context.Context, s domain.Supplier) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO suppliers (id, name, slug, user_id, claim_status) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Slug, mapOptionalString(s.UserID), string(s.ClaimStatus))
	return mapConstraint(err)
}

func (r *suppliersRepo) GetSupplierByID(ctx context.Context, id string) (domain.Supplier, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`, id)
	s, err := scanSupplier(row)
	if err != nil {
		return domain.Supplier{}, mapNotFound(err)
	}
	return s, nil
}

func (r *suppliersRepo) GetSupplierBySlug(ctx context.Context, slug string) (domain.Supplier, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE slug = ?`, slug)
	s, err := scanSupplier(row)
	if err != nil {
		return domain.Supplier{}, mapNotFound(err)
	}
	return s, nil
}

func (r *suppliersRepo) GetSupplierByUserID(ctx context.Context, userID string) (domain.Supplier, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE user_id = ?`, userID)
	s, err := scanSupplier(row)
	if err != nil {
		return domain.Supplier{}, mapNotFound(err)
	}
	return s, nil
}

func (r *suppliersRepo) SetClaimState(ctx context.Context, supplierID string, status domain.ClaimStatus, userID *string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE suppliers
		 SET claim_status = ?, user_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(status), mapOptionalString(userID), supplierID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
