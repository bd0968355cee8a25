package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mediashare-backend/pkg/db"
	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
	"github.com/angelmondragon/mediashare-backend/pkg/metrics"
)

// Service records per-user ratings and maintains the media aggregate.
type Service interface {
	Rate(ctx context.Context, mediaID, userID uuid.UUID, value int) (*Summary, error)
	Mine(ctx context.Context, mediaID, userID uuid.UUID) (*RatingDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db      txRunner
	read    *Repository
	logg    *logger.Logger
	metrics *metrics.MediaMetrics
}

// ServiceParams bundles the dependencies of the rating service.
type ServiceParams struct {
	DB      *db.Client
	Logger  *logger.Logger
	Metrics *metrics.MediaMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &service{
		db:      params.DB,
		read:    NewRepository(params.DB.DB()),
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Rate inserts or updates the caller's rating and recomputes the aggregate in
// one transaction. A concurrent first rating by the same user trips the
// unique index; the transaction is then replayed once and takes the update
// path.
func (s *service) Rate(ctx context.Context, mediaID, userID uuid.UUID, value int) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if value < MinValue || value > MaxValue {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("value must be between %d and %d", MinValue, MaxValue)).
			WithDetails(map[string]any{"value": value})
	}

	summary, err := s.rateOnce(ctx, mediaID, userID, value)
	if err != nil && db.IsUniqueViolation(err, "") {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithMediaID(ctx, mediaID.String()), "concurrent rating insert, retrying as update")
		}
		summary, err = s.rateOnce(ctx, mediaID, userID, value)
	}
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rate media")
	}

	s.metrics.IncRating()
	return &summary, nil
}

func (s *service) rateOnce(ctx context.Context, mediaID, userID uuid.UUID, value int) (Summary, error) {
	var summary Summary
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		exists, err := repo.MediaExists(ctx, mediaID)
		if err != nil {
			return err
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}

		existing, err := repo.FindByUserAndMedia(ctx, userID, mediaID)
		switch {
		case err == nil:
			if err := repo.UpdateValue(ctx, existing, value); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := repo.Create(ctx, &models.Rating{MediaID: mediaID, UserID: userID, Value: value}); err != nil {
				return err
			}
		default:
			return err
		}

		summary, err = repo.Aggregate(ctx, mediaID)
		if err != nil {
			return err
		}
		return repo.SyncMediaAggregate(ctx, mediaID, summary)
	})
	return summary, err
}

func (s *service) Mine(ctx context.Context, mediaID, userID uuid.UUID) (*RatingDTO, error) {
	rating, err := s.read.FindByUserAndMedia(ctx, userID, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rating not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rating")
	}
	dto := toDTO(*rating)
	return &dto, nil
}
