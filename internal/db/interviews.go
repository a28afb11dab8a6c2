package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateInterview stores a completed interview. The caller assigns the ID and
// CreatedAt; a zero CreatedAt defaults to NOW().
func (db *DB) CreateInterview(ctx context.Context, iv *Interview) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO interviews (id, user_id, title, category, score, question_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		 RETURNING created_at`,
		iv.ID, iv.UserID, iv.Title, iv.Category, iv.Score, iv.QuestionCount, nullTime(iv.CreatedAt),
	).Scan(&iv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// ListInterviewsByUser returns a user's interviews, newest first.
func (db *DB) ListInterviewsByUser(ctx context.Context, userID uuid.UUID) ([]Interview, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, title, category, score, question_count, created_at
		 FROM interviews
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var interviews []Interview
	for rows.Next() {
		var iv Interview
		if err := rows.Scan(&iv.ID, &iv.UserID, &iv.Title, &iv.Category, &iv.Score, &iv.QuestionCount, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interviews: %w", err)
	}
	return interviews, nil
}
