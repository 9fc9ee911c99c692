package sqlite

import (
	"context"
	"database/sql"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

type orgMembersRepo struct {
	q dbtx
}

const orgMemberColumns = `organisation_id, user_id, role, created_at, updated_at`

func scanOrgMember(row interface{ Scan(...any) error }) (domain.OrganisationMember, error) {
	var m domain.OrganisationMember
	var role string
	err := row.Scan(&m.OrganisationID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.OrganisationMember{}, err
	}
	m.Role = domain.OrgRole(role)
	return m, nil
}

func (r *orgMembersRepo) CreateOrganisationMember(ctx context.Context, m domain.OrganisationMember) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO organisation_members (organisation_id, user_id, role)
		 VALUES (?, ?, ?)`,
		m.OrganisationID, m.UserID, string(m.Role))
	return mapConstraint(err)
}

func (r *orgMembersRepo) GetMembershipByUserID(ctx context.Context, userID string) (domain.OrganisationMember, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+orgMemberColumns+` FROM organisation_members WHERE user_id = ?`, userID)
	m, err := scanOrgMember(row)
	if err != nil {
		return domain.OrganisationMember{}, mapNotFound(err)
	}
	return m, nil
}

func (r *orgMembersRepo) GetMembership(ctx context.Context, orgID, userID string) (domain.OrganisationMember, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+orgMemberColumns+` FROM organisation_members
		 WHERE organisation_id = ? AND user_id = ?`, orgID, userID)
	m, err := scanOrgMember(row)
	if err != nil {
		return domain.OrganisationMember{}, mapNotFound(err)
	}
	return m, nil
}

func (r *orgMembersRepo) ListByOrganisation(ctx context.Context, orgID string) ([]domain.OrganisationMember, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+orgMemberColumns+` FROM organisation_members
		 WHERE organisation_id = ? ORDER BY created_at ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.OrganisationMember
	for rows.Next() {
		m, err := scanOrgMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *orgMembersRepo) UpdateRole(ctx context.Context, orgID, userID string, role domain.OrgRole) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE organisation_members
		 SET role = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE organisation_id = ? AND user_id = ?`,
		string(role), orgID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *orgMembersRepo) DeleteMembership(ctx context.Context, orgID, userID string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM organisation_members WHERE organisation_id = ? AND user_id = ?`,
		orgID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
