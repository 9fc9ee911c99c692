package sqlite

import (
	"context"
	"database/sql"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

type supplierClaimsRepo struct {
	q dbtx
}

const claimColumns = `id, supplier_id, user_id, status, verification_code, company_email, attempts, created_at, updated_at`

func scanClaim(row interface{ Scan(...any) error }) (domain.SupplierClaim, error) {
	var c domain.SupplierClaim
	var status string
	err := row.Scan(&c.ID, &c.SupplierID, &c.UserID, &status, &c.VerificationCode,
		&c.CompanyEmail, &c.Attempts, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.SupplierClaim{}, err
	}
	c.Status = domain.ClaimState(status)
	return c, nil
}

func (r *supplierClaimsRepo) CreateSupplierClaim(ctx context.Context, c domain.SupplierClaim) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO supplier_claims (id, supplier_id, user_id, status, verification_code, company_email)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.SupplierID, c.UserID, string(c.Status), c.VerificationCode, c.CompanyEmail)
	return mapConstraint(err)
}

func (r *supplierClaimsRepo) GetSupplierClaimByID(ctx context.Context, id string) (domain.SupplierClaim, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM supplier_claims WHERE id = ?`, id)
	c, err := scanClaim(row)
	if err != nil {
		return domain.SupplierClaim{}, mapNotFound(err)
	}
	return c, nil
}

func (r *supplierClaimsRepo) GetPendingClaim(ctx context.Context, supplierID, userID string) (domain.SupplierClaim, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM supplier_claims
		 WHERE supplier_id = ? AND user_id = ? AND status = 'PENDING'
		 ORDER BY created_at DESC LIMIT 1`,
		supplierID, userID)
	c, err := scanClaim(row)
	if err != nil {
		return domain.SupplierClaim{}, mapNotFound(err)
	}
	return c, nil
}

func (r *supplierClaimsRepo) GetPendingClaimsByUser(ctx context.Context, userID string) ([]domain.SupplierClaim, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM supplier_claims
		 WHERE user_id = ? AND status = 'PENDING' ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []domain.SupplierClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func (r *supplierClaimsRepo) SetStatus(ctx context.Context, claimID string, status domain.ClaimState) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE supplier_claims
		 SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(status), claimID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *supplierClaimsRepo) IncrementAttempts(ctx context.Context, claimID string) (domain.SupplierClaim, error) {
	_, err := r.q.ExecContext(ctx,
		`UPDATE supplier_claims
		 SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		claimID)
	if err != nil {
		return domain.SupplierClaim{}, err
	}

	row := r.q.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM supplier_claims WHERE id = ?`, claimID)
	c, err := scanClaim(row)
	if err != nil {
		return domain.SupplierClaim{}, mapNotFound(err)
	}
	return c, nil
}
