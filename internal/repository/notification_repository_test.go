package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
	"github.com/alexpetro/campaign-notifier/internal/model"
)

func newNotificationRepo(t *testing.T) (*NotificationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &NotificationRepository{DB: db}, mock
}

func notificationRows(campaignID int, recipientIDs ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "status", "campaign_id", "recipient_id", "created_at", "updated_at"})
	for i, recipientID := range recipientIDs {
		rows.AddRow(i+1, "pending", campaignID, recipientID, time.Now(), time.Now())
	}
	return rows
}

func TestAddManyInsertsPendingRows(t *testing.T) {
	repo, mock := newNotificationRepo(t)

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(model.NotificationPending, 1, 10, 11, 12).
		WillReturnRows(notificationRows(1, 10, 11, 12))

	notifications, err := repo.AddMany(context.Background(), 1, []int{10, 11, 12})

	require.NoError(t, err)
	require.Len(t, notifications, 3)
	for _, n := range notifications {
		assert.Equal(t, model.NotificationPending, n.Status)
		assert.Equal(t, 1, n.CampaignID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddManyEmptyRecipientList(t *testing.T) {
	repo, mock := newNotificationRepo(t)

	notifications, err := repo.AddMany(context.Background(), 1, nil)

	require.NoError(t, err)
	assert.Empty(t, notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddManyDuplicatePairIsConflict(t *testing.T) {
	repo, mock := newNotificationRepo(t)

	mock.ExpectQuery("INSERT INTO notifications").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.AddMany(context.Background(), 1, []int{10})

	assert.True(t, apperrors.IsConflict(err))
}

func TestRecordOutcome(t *testing.T) {
	repo, mock := newNotificationRepo(t)

	mock.ExpectQuery("UPDATE notifications SET status").
		WithArgs(model.NotificationDelivered, 1, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "campaign_id", "recipient_id", "created_at", "updated_at"}).
			AddRow(4, "delivered", 1, 10, time.Now(), time.Now()))

	n, err := repo.RecordOutcome(context.Background(), 1, 10, model.NotificationDelivered)

	require.NoError(t, err)
	assert.Equal(t, model.NotificationDelivered, n.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcomeUnknownPair(t *testing.T) {
	repo, mock := newNotificationRepo(t)

	mock.ExpectQuery("UPDATE notifications SET status").
		WithArgs(model.NotificationSent, 1, 99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "campaign_id", "recipient_id", "created_at", "updated_at"}))

	_, err := repo.RecordOutcome(context.Background(), 1, 99, model.NotificationSent)

	assert.True(t, apperrors.IsNotFound(err))
}

func TestListByCampaign(t *testing.T) {
	repo, mock := newNotificationRepo(t)

	mock.ExpectQuery("FROM notifications WHERE campaign_id").
		WithArgs(1).
		WillReturnRows(notificationRows(1, 10, 11))

	notifications, err := repo.ListByCampaign(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, notifications, 2)
}

func TestStatsByCampaignFillsAbsentStatuses(t *testing.T) {
	repo, mock := newNotificationRepo(t)

	mock.ExpectQuery("SELECT status, COUNT").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("delivered", 7).
			AddRow("pending", 2))

	stats, err := repo.StatsByCampaign(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 7, stats[model.NotificationDelivered])
	assert.Equal(t, 2, stats[model.NotificationPending])
	assert.Equal(t, 0, stats[model.NotificationSent])
	assert.Equal(t, 0, stats[model.NotificationUndelivered])
}

func TestNotificationDeleteNotFound(t *testing.T) {
	repo, mock := newNotificationRepo(t)

	mock.ExpectExec("DELETE FROM notifications").
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)

	assert.True(t, apperrors.IsNotFound(err))
}
