package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/mediashare-backend/internal/comments"
	"github.com/angelmondragon/mediashare-backend/internal/ratings"
	"github.com/angelmondragon/mediashare-backend/internal/users"
	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
	"github.com/angelmondragon/mediashare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
	"github.com/angelmondragon/mediashare-backend/pkg/logger"
	"github.com/angelmondragon/mediashare-backend/pkg/metrics"
	"github.com/angelmondragon/mediashare-backend/pkg/storage/local"
	"github.com/angelmondragon/mediashare-backend/pkg/types"
)

// Service exposes the media catalog.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*MediaDTO, error)
	List(ctx context.Context, params ListParams) ([]MediaDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*MediaDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type mediaRepository interface {
	Create(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	List(ctx context.Context, opts listQuery) ([]models.Media, error)
}

type userLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type blobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	Open(name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	PublicURL(name string) string
	MaxBytes() int64
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db          txRunner
	repo        mediaRepository
	users       userLookup
	store       blobStore
	thumbnailer thumbnailer
	logg        *logger.Logger
	metrics     *metrics.MediaMetrics
	now         func() time.Time
}

// ServiceParams bundles the dependencies of the media service. Thumbnailer,
// Logger and Metrics are optional.
type ServiceParams struct {
	DB          txRunner
	Repo        mediaRepository
	Users       userLookup
	Store       blobStore
	Thumbnailer thumbnailer
	Logger      *logger.Logger
	Metrics     *metrics.MediaMetrics
}

// NewService constructs a media service backed by the provided repositories and blob store.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		users:       params.Users,
		store:       params.Store,
		thumbnailer: params.Thumbnailer,
		logg:        params.Logger,
		metrics:     params.Metrics,
		now:         time.Now,
	}, nil
}

// UploadInput carries one multipart upload.
type UploadInput struct {
	Uploader     users.Summary
	File         io.Reader
	FileName     string
	DeclaredType string
	Title        string
	Caption      string
	Location     string
	People       string
}

// ListParams configures media listing filters.
type ListParams struct {
	Search    string
	MediaType *enums.MediaType
	UserID    *uuid.UUID
}

// Upload validates, stores and records a blob. If the metadata write fails
// the stored blob and thumbnail are removed before the error is returned.
func (s *service) Upload(ctx context.Context, input UploadInput) (*MediaDTO, error) {
	if input.Uploader.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.File == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media file is required")
	}
	people := types.SplitStringSet(input.People)
	if len(people) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "people is required")
	}

	reader := bufio.NewReaderSize(input.File, sniffLen)
	head, err := reader.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read media file")
	}
	if len(head) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media file is empty")
	}

	mimeType := resolveMimeType(input.DeclaredType, head)
	if !isAllowedMime(mimeType) {
		s.metrics.IncUpload("", metrics.OutcomeRejected, 0)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported media type").
			WithDetails(map[string]any{"mime_type": mimeType, "allowed": AllowedMimeTypes})
	}
	mediaType := enums.MediaTypeFromMime(mimeType)

	name, err := local.GenerateName(input.FileName, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate file name")
	}

	size, err := s.store.Save(ctx, name, reader)
	if err != nil {
		if errors.Is(err, local.ErrTooLarge) {
			s.metrics.IncUpload(mediaType.String(), metrics.OutcomeRejected, 0)
			return nil, pkgerrors.New(pkgerrors.CodeTooLarge, "media file too large").
				WithDetails(map[string]any{"max_bytes": s.store.MaxBytes()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store media file")
	}

	ctx = s.withLogField(ctx, "file_name", name)

	var thumbName string
	var thumbURL *string
	if mediaType == enums.MediaTypeImage {
		if thumbName = s.writeThumbnail(ctx, name); thumbName != "" {
			url := s.store.PublicURL(thumbName)
			thumbURL = &url
		}
	}

	record := &models.Media{
		UserID:       input.Uploader.ID,
		Title:        strings.TrimSpace(input.Title),
		Caption:      strings.TrimSpace(input.Caption),
		Location:     strings.TrimSpace(input.Location),
		People:       people,
		MediaURL:     s.store.PublicURL(name),
		ThumbnailURL: thumbURL,
		MediaType:    mediaType,
		MimeType:     mimeType,
		SizeBytes:    size,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		err = multierr.Append(err, s.store.Delete(ctx, name))
		if thumbName != "" {
			err = multierr.Append(err, s.store.Delete(ctx, thumbName))
		}
		if s.logg != nil {
			s.logg.Error(ctx, "media metadata write failed, stored files rolled back", err)
		}
		s.metrics.IncUpload(mediaType.String(), metrics.OutcomeRolledBack, 0)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist media")
	}

	s.metrics.IncUpload(mediaType.String(), metrics.OutcomeStored, size)
	dto := toDTO(*created, input.Uploader)
	return &dto, nil
}

// writeThumbnail renders a preview for name. Failures are logged and yield
// an empty name; they never fail the upload.
func (s *service) writeThumbnail(ctx context.Context, name string) string {
	if s.thumbnailer == nil {
		return ""
	}
	src, err := s.store.Open(name)
	if err != nil {
		s.warn(ctx, "thumbnail source unavailable", err)
		return ""
	}
	data, err := s.thumbnailer.Thumbnail(src)
	_ = src.Close()
	if err != nil {
		s.warn(ctx, "thumbnail generation failed", err)
		return ""
	}

	thumbName := thumbnailName(name)
	if _, err := s.store.Save(ctx, thumbName, bytes.NewReader(data)); err != nil {
		s.warn(ctx, "thumbnail write failed", err)
		return ""
	}
	return thumbName
}

func (s *service) List(ctx context.Context, params ListParams) ([]MediaDTO, error) {
	if params.MediaType != nil && !params.MediaType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type must be image or video")
	}
	rows, err := s.repo.List(ctx, listQuery{
		search:    strings.TrimSpace(params.Search),
		mediaType: params.MediaType,
		userID:    params.UserID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list media")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UserID)
	}
	lookup, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup uploaders")
	}

	items := make([]MediaDTO, 0, len(rows))
	for _, m := range rows {
		items = append(items, toDTO(m, users.SummaryFor(lookup, m.UserID)))
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*MediaDTO, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	lookup, err := s.users.FindByIDs(ctx, []uuid.UUID{m.UserID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup uploader")
	}
	dto := toDTO(*m, users.SummaryFor(lookup, m.UserID))
	return &dto, nil
}

// Delete removes the media blob and thumbnail, then its comments, ratings
// and row. The three row deletions share one transaction; blob removal
// happens first and cannot be rolled back.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	ctx = s.withMediaID(ctx, id)

	if err := s.deleteBlob(ctx, m.MediaURL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete media file")
	}
	if m.ThumbnailURL != nil {
		if err := s.deleteBlob(ctx, *m.ThumbnailURL); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete thumbnail")
		}
	}

	var removedComments, removedRatings int64
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		if removedComments, err = comments.NewRepository(tx).DeleteByMedia(ctx, id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if removedRatings, err = ratings.NewRepository(tx).DeleteByMedia(ctx, id); err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		if err := NewRepository(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("delete media row: %w", err)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete media records")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"comments_deleted": removedComments,
			"ratings_deleted":  removedRatings,
		}), "media deleted")
	}
	s.metrics.IncDelete()
	return nil
}

func (s *service) deleteBlob(ctx context.Context, url string) error {
	name, err := local.NameFromURL(url)
	if err != nil {
		s.warn(ctx, "media url does not map to a stored file", err)
		return nil
	}
	if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load media")
	}
	return m, nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func (s *service) withLogField(ctx context.Context, key string, value any) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithField(ctx, key, value)
}

func (s *service) withMediaID(ctx context.Context, id uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithMediaID(ctx, id.String())
}
