package sqlite

import (
	"context"
	"database/sql"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

type organisationsRepo struct {
	q dbtx
}

const organisationColumns = `id, name, slug, type, brand_id, supplier_id, created_at, updated_at`

func scanOrganisation(row interface{ Scan(...any) error }) (domain.Organisation, error) {
	var o domain.Organisation
	var orgType string
	var brandID, supplierID sql.NullString
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &orgType, &brandID, &supplierID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Organisation{}, err
	}
	o.Type = domain.OrgType(orgType)
	o.BrandID = mapNullStringPtr(brandID)
	o.SupplierID = mapNullStringPtr(supplierID)
	return o, nil
}

func (r *organisationsRepo) CreateOrganisation(ctx context.Context, o domain.Organisation) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO organisations (id, name, slug, type, brand_id, supplier_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Slug, string(o.Type),
		mapOptionalString(o.BrandID), mapOptionalString(o.SupplierID))
	return mapConstraint(err)
}

func (r *organisationsRepo) GetOrganisationByID(ctx context.Context, id string) (domain.Organisation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+organisationColumns+` FROM organisations WHERE id = ?`, id)
	o, err := scanOrganisation(row)
	if err != nil {
		return domain.Organisation{}, mapNotFound(err)
	}
	return o, nil
}

func (r *organisationsRepo) GetOrganisationBySlug(ctx context.Context, slug string) (domain.Organisation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+organisationColumns+` FROM organisations WHERE slug = ?`, slug)
	o, err := scanOrganisation(row)
	if err != nil {
		return domain.Organisation{}, mapNotFound(err)
	}
	return o, nil
}

func (r *organisationsRepo) DeleteOrganisation(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM organisations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
