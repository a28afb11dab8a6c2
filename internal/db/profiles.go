package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetProfile retrieves the interview profile of a user. Returns nil, nil if
// the user has no profile.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, target_role, target_company, experience, interview_type,
		        skills, status, created_at, updated_at
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.TargetRole, &p.TargetCompany, &p.Experience, &p.InterviewType,
		&p.Skills, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

// UpsertProfile inserts or replaces a user's profile (last write wins) and
// fills in the stored timestamps.
func (db *DB) UpsertProfile(ctx context.Context, p *Profile) error {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, target_role, target_company, experience,
		                       interview_type, skills, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     target_role = EXCLUDED.target_role,
		     target_company = EXCLUDED.target_company,
		     experience = EXCLUDED.experience,
		     interview_type = EXCLUDED.interview_type,
		     skills = EXCLUDED.skills,
		     status = EXCLUDED.status,
		     updated_at = NOW()
		 RETURNING created_at, updated_at`,
		p.UserID, p.TargetRole, p.TargetCompany, p.Experience, p.InterviewType, skills, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
