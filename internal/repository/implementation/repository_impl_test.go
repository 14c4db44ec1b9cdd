package implementation

import (
	"context"
	"testing"
	"time"

	"student-risk-be/internal/entity"
	"student-risk-be/internal/model"
	"student-risk-be/internal/repository/specification"
	"student-risk-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemory(uuid.NewString())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.Models()...))
	return db
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &entity.User{Email: "a@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.Id)
	assert.False(t, user.CreatedAt.IsZero())

	found, err := repo.FindOne(ctx, specification.ByID{ID: user.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a@example.com", found.Email)

	missing, err := repo.FindOne(ctx, specification.ByEmail{Email: "b@example.com"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "a@example.com", PasswordHash: "hash"}))
	err := repo.Create(ctx, &entity.User{Email: "a@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPredictionRepository_Specifications(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewPredictionRepository(db)
	ctx := context.Background()

	owner := &entity.User{Email: "a@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, owner))

	base := time.Now().Add(-time.Hour)
	sources := []entity.PredictionSource{
		entity.PredictionSourceForm,
		entity.PredictionSourceAPI,
		entity.PredictionSourceForm,
		entity.PredictionSourceForm,
	}
	for i, source := range sources {
		rec := &entity.PredictionRecord{
			UserId:       &owner.Id,
			Source:       source,
			Label:        "Dropout",
			Confidence:   0.5 + float64(i)/10,
			ModelVersion: "v1",
			Features:     map[string]float64{"Age at enrollment": float64(20 + i)},
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, rec))
	}
	require.NoError(t, repo.Create(ctx, &entity.PredictionRecord{
		Source:   entity.PredictionSourceAPI,
		Label:    "Graduate",
		Features: map[string]float64{},
	}))

	count, err := repo.Count(ctx, specification.UserOwnedBy{UserID: owner.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	count, err = repo.Count(ctx, specification.BySource{Source: string(entity.PredictionSourceAPI)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	latest, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: owner.Id}, specification.Latest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 23.0, latest[0].Features["Age at enrollment"])
	assert.Equal(t, 22.0, latest[1].Features["Age at enrollment"])
	assert.Equal(t, entity.PredictionSourceForm, latest[0].Source)
}
