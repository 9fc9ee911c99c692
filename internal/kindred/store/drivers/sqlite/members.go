package sqlite

import (
	"context"
	"database/sql"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

type membersRepo struct {
	q dbtx
}

func (r *membersRepo) GetMemberByUserID(ctx context.Context, userID string) (domain.Member, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT user_id, first_name, last_name, job_title, bio, avatar_url, created_at, updated_at
		 FROM members WHERE user_id = ?`, userID)

	var m domain.Member
	var jobTitle, bio, avatarURL sql.NullString
	err := row.Scan(&m.UserID, &m.FirstName, &m.LastName, &jobTitle, &bio, &avatarURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	m.JobTitle = mapNullStringPtr(jobTitle)
	m.Bio = mapNullStringPtr(bio)
	m.AvatarURL = mapNullStringPtr(avatarURL)
	return m, nil
}

func (r *membersRepo) UpsertMember(ctx context.Context, m domain.Member) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO members (user_id, first_name, last_name, job_title, bio, avatar_url)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     first_name = excluded.first_name,
		     last_name  = excluded.last_name,
		     job_title  = excluded.job_title,
		     bio        = excluded.bio,
		     avatar_url = excluded.avatar_url,
		     updated_at = CURRENT_TIMESTAMP`,
		m.UserID, m.FirstName, m.LastName,
		mapOptionalString(m.JobTitle), mapOptionalString(m.Bio), mapOptionalString(m.AvatarURL))
	return mapConstraint(err)
}
