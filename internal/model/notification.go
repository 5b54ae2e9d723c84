// internal/model/notification.go
package model

import "time"

// NotificationStatus tracks a single delivery attempt. Rows start as pending
// and receive exactly one outcome from the delivery side.
type NotificationStatus string

const (
	NotificationPending     NotificationStatus = "pending"
	NotificationSent        NotificationStatus = "sent"
	NotificationDelivered   NotificationStatus = "delivered"
	NotificationUndelivered NotificationStatus = "undelivered"
)

// Valid reports whether s is one of the known notification statuses.
func (s NotificationStatus) Valid() bool {
	switch s {
	case NotificationPending, NotificationSent, NotificationDelivered, NotificationUndelivered:
		return true
	}
	return false
}

type Notification struct {
	ID          int                `db:"id" json:"id"`
	Status      NotificationStatus `db:"status" json:"status"`
	CampaignID  int                `db:"campaign_id" json:"campaign_id"`
	RecipientID int                `db:"recipient_id" json:"recipient_id"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}
