package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/ratuser/inter-prep-GenAi/internal/db"
	"github.com/ratuser/inter-prep-GenAi/internal/interview"
	"github.com/ratuser/inter-prep-GenAi/internal/types"
)

// UserStore is the account storage used by UserService.
type UserStore interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
}

// ProfileStore reads and writes interview profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*db.Profile, error)
	UpsertProfile(ctx context.Context, p *db.Profile) error
}

// InterviewRepository stores and lists completed interviews.
type InterviewRepository interface {
	CreateInterview(ctx context.Context, iv *db.Interview) error
	ListInterviewsByUser(ctx context.Context, userID uuid.UUID) ([]db.Interview, error)
}

// ProfileSource is what the chat handler reads profiles from: the store
// itself or the Redis cache in front of it.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*interview.Profile, error)
}

// ProfileInvalidator drops cached profiles after a write.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

var (
	_ UserStore           = (*db.DB)(nil)
	_ ProfileStore        = (*db.DB)(nil)
	_ InterviewRepository = (*db.DB)(nil)
)

// profileLoader adapts a ProfileStore to ProfileSource.
type profileLoader struct {
	store ProfileStore
}

// NewProfileLoader adapts store rows into interview profiles.
func NewProfileLoader(store ProfileStore) ProfileSource {
	return &profileLoader{store: store}
}

func (l *profileLoader) GetProfile(ctx context.Context, userID uuid.UUID) (*interview.Profile, error) {
	p, err := l.store.GetProfile(ctx, userID)
	if err != nil || p == nil {
		return nil, err
	}
	return convertDBProfile(p), nil
}

// interviewWriter adapts an InterviewRepository to interview.InterviewStore.
type interviewWriter struct {
	repo InterviewRepository
}

func (w *interviewWriter) CreateInterview(ctx context.Context, iv *interview.CompletedInterview) error {
	row := &db.Interview{
		ID:            iv.ID,
		UserID:        iv.UserID,
		Title:         iv.Title,
		Category:      string(iv.Category),
		Score:         iv.Score,
		QuestionCount: iv.QuestionCount,
		CreatedAt:     iv.CreatedAt,
	}
	if err := w.repo.CreateInterview(ctx, row); err != nil {
		return err
	}
	iv.CreatedAt = row.CreatedAt
	return nil
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:        dbUser.ID,
		Name:      dbUser.Name,
		Email:     dbUser.Email,
		CreatedAt: dbUser.CreatedAt,
		UpdatedAt: dbUser.UpdatedAt,
	}
}

func convertDBProfile(p *db.Profile) *interview.Profile {
	return &interview.Profile{
		UserID:          p.UserID,
		TargetRole:      p.TargetRole,
		TargetCompany:   p.TargetCompany,
		ExperienceLevel: p.Experience,
		Mode:            interview.ParseMode(p.InterviewType),
		Skills:          p.Skills,
		Status:          interview.Status(p.Status),
		UpdatedAt:       p.UpdatedAt,
	}
}

func convertDBProfileToResponse(p *db.Profile) *types.ProfileResponse {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return &types.ProfileResponse{
		TargetRole:    p.TargetRole,
		TargetCompany: p.TargetCompany,
		Experience:    p.Experience,
		InterviewType: p.InterviewType,
		Skills:        skills,
		Status:        p.Status,
		UpdatedAt:     p.UpdatedAt,
	}
}

func convertDBInterviews(rows []db.Interview) []interview.CompletedInterview {
	out := make([]interview.CompletedInterview, 0, len(rows))
	for _, r := range rows {
		out = append(out, interview.CompletedInterview{
			ID:            r.ID,
			UserID:        r.UserID,
			Title:         r.Title,
			Category:      interview.Category(r.Category),
			Score:         r.Score,
			QuestionCount: r.QuestionCount,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out
}
