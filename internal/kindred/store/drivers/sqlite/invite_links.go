package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

type inviteLinksRepo struct {
	q dbtx
}

const inviteLinkColumns = `id, token, is_active, expires_at, max_uses, used_count, target_role, created_by, created_at, updated_at`

func scanInviteLink(row interface{ Scan(...any) error }) (domain.InviteLink, error) {
	var l domain.InviteLink
	var expiresAt sql.NullTime
	var maxUses sql.NullInt64
	var targetRole sql.NullString
	err := row.Scan(&l.ID, &l.Token, &l.IsActive, &expiresAt, &maxUses, &l.UsedCount,
		&targetRole, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.InviteLink{}, err
	}
	l.ExpiresAt = mapNullTimePtr(expiresAt)
	l.MaxUses = mapNullInt64Ptr(maxUses)
	if targetRole.Valid {
		role := domain.UserRole(targetRole.String)
		l.TargetRole = &role
	}
	return l, nil
}

func (r *inviteLinksRepo) CreateInviteLink(ctx context.Context, l domain.InviteLink) error {
	var targetRole sql.NullString
	if l.TargetRole != nil {
		targetRole = sql.NullString{String: string(*l.TargetRole), Valid: true}
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO invite_links (id, token, is_active, expires_at, max_uses, target_role, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Token, l.IsActive, mapOptionalTime(l.ExpiresAt), mapOptionalInt64(l.MaxUses),
		targetRole, l.CreatedBy)
	return mapConstraint(err)
}

func (r *inviteLinksRepo) GetInviteLinkByToken(ctx context.Context, token string) (domain.InviteLink, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+inviteLinkColumns+` FROM invite_links WHERE token = ?`, token)
	l, err := scanInviteLink(row)
	if err != nil {
		return domain.InviteLink{}, mapNotFound(err)
	}
	return l, nil
}

func (r *inviteLinksRepo) GetInviteLinkByID(ctx context.Context, id string) (domain.InviteLink, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+inviteLinkColumns+` FROM invite_links WHERE id = ?`, id)
	l, err := scanInviteLink(row)
	if err != nil {
		return domain.InviteLink{}, mapNotFound(err)
	}
	return l, nil
}

func (r *inviteLinksRepo) ListInviteLinks(ctx context.Context) ([]domain.InviteLink, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+inviteLinkColumns+` FROM invite_links ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.InviteLink
	for rows.Next() {
		l, err := scanInviteLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *inviteLinksRepo) UpdateInviteLink(ctx context.Context, id string, isActive bool, expiresAt *time.Time, maxUses *int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE invite_links
		 SET is_active = ?, expires_at = ?, max_uses = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		isActive, mapOptionalTime(expiresAt), mapOptionalInt64(maxUses), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

// RecomputeUsedCount derives used_count from the users table instead of
// incrementing, so concurrent signups can never under-count usage.
func (r *inviteLinksRepo) RecomputeUsedCount(ctx context.Context, token string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE invite_links
		 SET used_count = (SELECT COUNT(*) FROM users WHERE invite_link_token = ?),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE token = ?`,
		token, token)
	return err
}

func (r *inviteLinksRepo) DeleteInviteLink(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM invite_links WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *inviteLinksRepo) DeleteExpiredUnused(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM invite_links
		 WHERE expires_at IS NOT NULL
		   AND expires_at <= CURRENT_TIMESTAMP
		   AND used_count = 0`)
	return err
}
