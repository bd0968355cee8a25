package comments

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/angelmondragon/mediashare-backend/internal/users"
	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
	"github.com/angelmondragon/mediashare-backend/pkg/metrics"
)

// Service creates and lists comments.
type Service interface {
	Create(ctx context.Context, mediaID uuid.UUID, author users.Summary, text string) (*CommentDTO, error)
	List(ctx context.Context, mediaID uuid.UUID) ([]CommentDTO, error)
}

type commentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]models.Comment, error)
	MediaExists(ctx context.Context, mediaID uuid.UUID) (bool, error)
}

type userLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type service struct {
	repo    commentRepository
	users   userLookup
	metrics *metrics.MediaMetrics
}

func NewService(repo commentRepository, users userLookup, m *metrics.MediaMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("comment repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	return &service{repo: repo, users: users, metrics: m}, nil
}

func (s *service) Create(ctx context.Context, mediaID uuid.UUID, author users.Summary, text string) (*CommentDTO, error) {
	if author.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "text is required")
	}
	if utf8.RuneCountInString(clean) > MaxTextLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("text must be at most %d characters", MaxTextLength)).
			WithDetails(map[string]any{"max_length": MaxTextLength})
	}

	exists, err := s.repo.MediaExists(ctx, mediaID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check media")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
	}

	created, err := s.repo.Create(ctx, &models.Comment{
		MediaID: mediaID,
		UserID:  author.ID,
		Text:    clean,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create comment")
	}
	s.metrics.IncComment()

	dto := toDTO(*created, author)
	return &dto, nil
}

// List returns comments for mediaID. Unknown media yields an empty list.
func (s *service) List(ctx context.Context, mediaID uuid.UUID) ([]CommentDTO, error) {
	rows, err := s.repo.ListByMedia(ctx, mediaID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list comments")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.UserID)
	}
	lookup, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup comment authors")
	}

	out := make([]CommentDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, toDTO(c, users.SummaryFor(lookup, c.UserID)))
	}
	return out, nil
}
