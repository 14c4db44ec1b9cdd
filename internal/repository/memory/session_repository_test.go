package memory

import (
	"context"
	"testing"
	"time"

	"student-risk-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	s := &entity.Session{Id: "abc", UserId: 3, Email: "a@example.com"}
	s.AddFlash(entity.FlashSuccess, "Logged in successfully")
	require.NoError(t, repo.Save(ctx, s))

	// mutating the saved value must not change the stored copy
	s.PopFlashes()

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(3), got.UserId)
	assert.Equal(t, []entity.Flash{{Category: entity.FlashSuccess, Message: "Logged in successfully"}}, got.Flashes)

	require.NoError(t, repo.Delete(ctx, "abc"))
	got, err = repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepository_Expires(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(20 * time.Millisecond)

	require.NoError(t, repo.Save(ctx, &entity.Session{Id: "short"}))
	time.Sleep(50 * time.Millisecond)

	got, err := repo.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, got)
}
