package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"meritboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAwardRepository_Create(t *testing.T) {
	t.Run("inserts award and bumps counter in one transaction", func(t *testing.T) {
		manager, mock := newTestManager(t)
		repo := NewAwardRepository(manager, zap.NewNop())

		award := &models.Award{
			UserID:      7,
			BadgeID:     3,
			ContentType: "question",
			ObjectID:    42,
		}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO awards")).
			WithArgs(award.UserID, award.BadgeID, award.ContentType, award.ObjectID,
				sqlmock.AnyArg(), award.Notified).
			WillReturnRows(sqlmock.NewRows([]string{"id", "awarded_at"}).
				AddRow(int64(55), time.Now()))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE badges SET awarded_count = awarded_count + 1")).
			WithArgs(award.BadgeID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Create(context.Background(), award)
		require.NoError(t, err)
		assert.Equal(t, int64(55), award.ID)
		assert.False(t, award.AwardedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the counter update fails", func(t *testing.T) {
		manager, mock := newTestManager(t)
		repo := NewAwardRepository(manager, zap.NewNop())

		award := &models.Award{
			UserID:      7,
			BadgeID:     3,
			ContentType: "question",
			ObjectID:    42,
		}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO awards")).
			WithArgs(award.UserID, award.BadgeID, award.ContentType, award.ObjectID,
				sqlmock.AnyArg(), award.Notified).
			WillReturnRows(sqlmock.NewRows([]string{"id", "awarded_at"}).
				AddRow(int64(55), time.Now()))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE badges SET awarded_count = awarded_count + 1")).
			WithArgs(award.BadgeID).
			WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		err := repo.Create(context.Background(), award)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to increment awarded count")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAwardRepository_HasAward(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
	}{
		{name: "award present", exists: true},
		{name: "award absent", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, mock := newTestManager(t)
			repo := NewAwardRepository(manager, zap.NewNop())

			mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
				WithArgs(int64(7), int64(3), "question", int64(42)).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			got, err := repo.HasAward(context.Background(), 7, 3, "question", 42)
			require.NoError(t, err)
			assert.Equal(t, tt.exists, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAwardRepository_GetRecent(t *testing.T) {
	manager, mock := newTestManager(t)
	repo := NewAwardRepository(manager, zap.NewNop())

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM awards a")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "badge_id", "content_type", "object_id",
			"awarded_at", "notified", "slug", "username",
		}).
			AddRow(int64(9), int64(7), int64(3), "question", int64(42), now, false, "teacher", "alice").
			AddRow(int64(8), int64(5), int64(2), "answer", int64(17), now.Add(-time.Minute), true, "supporter", "bob"))

	awards, err := repo.GetRecent(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, awards, 2)
	assert.Equal(t, "teacher", awards[0].BadgeSlug)
	assert.Equal(t, "alice", awards[0].Username)
	assert.Equal(t, "supporter", awards[1].BadgeSlug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardRepository_MarkNotified(t *testing.T) {
	manager, mock := newTestManager(t)
	repo := NewAwardRepository(manager, zap.NewNop())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE awards SET notified = true")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.MarkNotified(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
