package sqlite

import (
	"context"
	"database/sql"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

type brandsRepo struct {
	q dbtx
}

const brandColumns = `id, name, slug, user_id, created_at, updated_at`

func scanBrand(row interface{ Scan(...any) error }) (domain.Brand, error) {
	var b domain.Brand
	var userID sql.NullString
	err := row.Scan(&b.ID, &b.Name, &b.Slug, &userID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Brand{}, err
	}
	b.UserID = mapNullStringPtr(userID)
	return b, nil
}

func (r *brandsRepo) CreateBrand(ctx context.Context, b domain.Brand) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO brands (id, name, slug, user_id) VALUES (?, ?, ?, ?)`,
		b.ID, b.Name, b.Slug, mapOptionalString(b.UserID))
	return mapConstraint(err)
}

func (r *brandsRepo) GetBrandByID(ctx context.Context, id string) (domain.Brand, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE id = ?`, id)
	b, err := scanBrand(row)
	if err != nil {
		return domain.Brand{}, mapNotFound(err)
	}
	return b, nil
}

func (r *brandsRepo) GetBrandByUserID(ctx context.Context, userID string) (domain.Brand, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE user_id = ?`, userID)
	b, err := scanBrand(row)
	if err != nil {
		return domain.Brand{}, mapNotFound(err)
	}
	return b, nil
}
