package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
	"github.com/alexpetro/campaign-notifier/internal/model"
)

type NotificationRepositoryInterface interface {
	AddMany(ctx context.Context, campaignID int, recipientIDs []int) ([]model.Notification, error)
	RecordOutcome(ctx context.Context, campaignID, recipientID int, status model.NotificationStatus) (*model.Notification, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]model.Notification, error)
	List(ctx context.Context) ([]model.Notification, error)
	GetByID(ctx context.Context, id int) (*model.Notification, error)
	Delete(ctx context.Context, id int) error
	StatsByCampaign(ctx context.Context, campaignID int) (map[model.NotificationStatus]int, error)
}

type NotificationRepository struct {
	DB *sql.DB
}

const notificationColumns = `id, status, campaign_id, recipient_id, created_at, updated_at`

func scanNotification(row interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.Status, &n.CampaignID, &n.RecipientID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// AddMany materializes one pending notification per recipient in a single
// insert. A second call for the same (campaign, recipient) pair breaks the
// unique constraint and surfaces as Conflict; the whole statement rolls back,
// no partial batch is left behind.
func (r *NotificationRepository) AddMany(ctx context.Context, campaignID int, recipientIDs []int) ([]model.Notification, error) {
	if len(recipientIDs) == 0 {
		return []model.Notification{}, nil
	}

	values := make([]string, 0, len(recipientIDs))
	args := make([]any, 0, len(recipientIDs)+2)
	args = append(args, model.NotificationPending, campaignID)
	for i, recipientID := range recipientIDs {
		values = append(values, fmt.Sprintf("($1, $2, $%d, NOW(), NOW())", i+3))
		args = append(args, recipientID)
	}

	query := `
        INSERT INTO notifications (status, campaign_id, recipient_id, created_at, updated_at)
        VALUES ` + strings.Join(values, ", ") + `
        RETURNING ` + notificationColumns

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("notifications for campaign %d already exist", campaignID)
		}
		return nil, err
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0, len(recipientIDs))
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// RecordOutcome sets the delivery outcome on the unique notification for the
// pair. NotFound means the campaign was never acquired for this recipient or
// the recipient was never added.
func (r *NotificationRepository) RecordOutcome(ctx context.Context, campaignID, recipientID int, status model.NotificationStatus) (*model.Notification, error) {
	query := `
        UPDATE notifications SET status=$1, updated_at=NOW()
        WHERE campaign_id=$2 AND recipient_id=$3
        RETURNING ` + notificationColumns
	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, status, campaignID, recipientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound(
			"notification for campaign %d and recipient %d not found", campaignID, recipientID,
		)
	}
	return n, err
}

func (r *NotificationRepository) ListByCampaign(ctx context.Context, campaignID int) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE campaign_id=$1`
	return r.queryNotifications(ctx, query, campaignID)
}

func (r *NotificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications ORDER BY id`
	return r.queryNotifications(ctx, query)
}

func (r *NotificationRepository) queryNotifications(ctx context.Context, query string, args ...any) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id=$1`
	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("notification %d not found", id)
	}
	return n, err
}

func (r *NotificationRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFound("notification %d not found", id)
	}
	return nil
}

// StatsByCampaign returns per-status counts for a campaign. Absent statuses
// are reported as zero so callers can read any key.
func (r *NotificationRepository) StatsByCampaign(ctx context.Context, campaignID int) (map[model.NotificationStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM notifications WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[model.NotificationStatus]int{
		model.NotificationPending:     0,
		model.NotificationSent:        0,
		model.NotificationDelivered:   0,
		model.NotificationUndelivered: 0,
	}
	for rows.Next() {
		var status model.NotificationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)
