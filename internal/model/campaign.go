// internal/model/campaign.go
package model

import "time"

// CampaignStatus is the lifecycle state of a campaign. Transitions only move
// forward: created -> running -> done | failed.
type CampaignStatus string

const (
	CampaignCreated CampaignStatus = "created"
	CampaignRunning CampaignStatus = "running"
	CampaignFailed  CampaignStatus = "failed"
	CampaignDone    CampaignStatus = "done"
)

// Terminal reports whether no further status transition is permitted.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignDone || s == CampaignFailed
}

type Campaign struct {
	ID         int            `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Content    string         `db:"content" json:"content"`
	Status     CampaignStatus `db:"status" json:"status"`
	LaunchDate time.Time      `db:"launch_date" json:"launch_date"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}
