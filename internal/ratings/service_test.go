package ratings

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/mediashare-backend/pkg/config"
	"github.com/angelmondragon/mediashare-backend/pkg/db"
	"github.com/angelmondragon/mediashare-backend/pkg/db/models"
	"github.com/angelmondragon/mediashare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mediashare-backend/pkg/errors"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB().AutoMigrate(models.All()...))
	return client
}

func seedMedia(t *testing.T, conn *gorm.DB) models.Media {
	t.Helper()
	m := models.Media{UserID: uuid.New(), MediaURL: "http://x/uploads/a.png", MediaType: enums.MediaTypeImage, MimeType: "image/png"}
	require.NoError(t, conn.Create(&m).Error)
	return m
}

func newTestService(t *testing.T) (*db.Client, Service) {
	t.Helper()
	client := newTestClient(t)
	svc, err := NewService(ServiceParams{DB: client})
	require.NoError(t, err)
	return client, svc
}

func TestRateInsertsThenUpdates(t *testing.T) {
	client, svc := newTestService(t)
	media := seedMedia(t, client.DB())
	ctx := context.Background()
	user := uuid.New()

	summary, err := svc.Rate(ctx, media.ID, user, 4)
	require.NoError(t, err)
	assert.Equal(t, Summary{AverageRating: 4, Count: 1}, *summary)

	summary, err = svc.Rate(ctx, media.ID, user, 2)
	require.NoError(t, err)
	assert.Equal(t, Summary{AverageRating: 2, Count: 1}, *summary, "re-rating replaces the value")

	var count int64
	require.NoError(t, client.DB().Model(&models.Rating{}).Where("media_id = ?", media.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	mine, err := svc.Mine(ctx, media.ID, user)
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Value)
}

func TestRateRecomputesMeanAndSyncsMedia(t *testing.T) {
	client, svc := newTestService(t)
	media := seedMedia(t, client.DB())
	ctx := context.Background()

	for _, v := range []int{5, 4, 4, 2} {
		_, err := svc.Rate(ctx, media.ID, uuid.New(), v)
		require.NoError(t, err)
	}
	summary, err := svc.Rate(ctx, media.ID, uuid.New(), 5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, summary.AverageRating, 1e-9)
	assert.EqualValues(t, 5, summary.Count)

	var stored models.Media
	require.NoError(t, client.DB().First(&stored, "id = ?", media.ID).Error)
	assert.InDelta(t, 4.0, stored.RatingAverage, 1e-9)
	assert.EqualValues(t, 5, stored.RatingCount)
}

func TestRateValidation(t *testing.T) {
	client, svc := newTestService(t)
	media := seedMedia(t, client.DB())
	ctx := context.Background()

	for _, v := range []int{0, 6, -1} {
		_, err := svc.Rate(ctx, media.ID, uuid.New(), v)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "value %d", v)
	}

	_, err := svc.Rate(ctx, uuid.New(), uuid.New(), 3)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Rate(ctx, media.ID, uuid.Nil, 3)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestAggregateWithoutRatingsIsZero(t *testing.T) {
	client := newTestClient(t)
	summary, err := NewRepository(client.DB()).Aggregate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

func TestMineNotFound(t *testing.T) {
	client, svc := newTestService(t)
	media := seedMedia(t, client.DB())
	_, err := svc.Mine(context.Background(), media.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

// racingRunner simulates another request inserting the same (user, media)
// rating between the existence check and the insert of the first attempt.
type racingRunner struct {
	client  *db.Client
	mediaID uuid.UUID
	userID  uuid.UUID
	calls   atomic.Int32
}

func (r *racingRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.calls.Add(1) == 1 {
		if err := r.client.DB().Create(&models.Rating{MediaID: r.mediaID, UserID: r.userID, Value: 1}).Error; err != nil {
			return err
		}
		return errors.New("UNIQUE constraint failed: ratings.user_id, ratings.media_id")
	}
	return r.client.WithTx(ctx, fn)
}

func TestRateRetriesConcurrentInsertAsUpdate(t *testing.T) {
	client := newTestClient(t)
	media := seedMedia(t, client.DB())
	user := uuid.New()
	runner := &racingRunner{client: client, mediaID: media.ID, userID: user}
	svc := &service{db: runner, read: NewRepository(client.DB())}

	summary, err := svc.Rate(context.Background(), media.ID, user, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, runner.calls.Load())
	assert.Equal(t, Summary{AverageRating: 5, Count: 1}, *summary)
}

func TestDeleteByMedia(t *testing.T) {
	client, svc := newTestService(t)
	media := seedMedia(t, client.DB())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.Rate(ctx, media.ID, uuid.New(), 3)
		require.NoError(t, err)
	}
	n, err := NewRepository(client.DB()).DeleteByMedia(ctx, media.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
