package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

type orgInvitesRepo struct {
	q dbtx
}

const orgInviteColumns = `id, organisation_id, email, token, role, expires_at, accepted_at, created_by, created_at, updated_at`

func scanOrgInvite(row interface{ Scan(...any) error }) (domain.OrganisationInvite, error) {
	var inv domain.OrganisationInvite
	var role string
	var acceptedAt sql.NullTime
	err := row.Scan(&inv.ID, &inv.OrganisationID, &inv.Email, &inv.Token, &role,
		&inv.ExpiresAt, &acceptedAt, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.OrganisationInvite{}, err
	}
	inv.Role = domain.OrgRole(role)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	return inv, nil
}

func (r *orgInvitesRepo) CreateOrganisationInvite(ctx context.Context, inv domain.OrganisationInvite) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO organisation_invites (id, organisation_id, email, token, role, expires_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.OrganisationID, inv.Email, inv.Token, string(inv.Role),
		inv.ExpiresAt, inv.CreatedBy)
	return mapConstraint(err)
}

func (r *orgInvitesRepo) GetOrganisationInviteByToken(ctx context.Context, token string) (domain.OrganisationInvite, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+orgInviteColumns+` FROM organisation_invites WHERE token = ?`, token)
	inv, err := scanOrgInvite(row)
	if err != nil {
		return domain.OrganisationInvite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *orgInvitesRepo) GetOpenInviteByOrgAndEmail(ctx context.Context, orgID, email string, now time.Time) (domain.OrganisationInvite, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+orgInviteColumns+` FROM organisation_invites
		 WHERE organisation_id = ? AND email = ? AND accepted_at IS NULL AND expires_at > ?
		 ORDER BY created_at DESC LIMIT 1`,
		orgID, email, now)
	inv, err := scanOrgInvite(row)
	if err != nil {
		return domain.OrganisationInvite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *orgInvitesRepo) MarkAccepted(ctx context.Context, inviteID string, acceptedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE organisation_invites
		 SET accepted_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND accepted_at IS NULL`,
		acceptedAt, inviteID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *orgInvitesRepo) DeleteOrganisationInvite(ctx context.Context, inviteID string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM organisation_invites WHERE id = ?`, inviteID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *orgInvitesRepo) DeleteExpiredUnaccepted(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM organisation_invites
		 WHERE accepted_at IS NULL AND expires_at <= CURRENT_TIMESTAMP`)
	return err
}
