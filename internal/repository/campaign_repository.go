package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
	"github.com/alexpetro/campaign-notifier/internal/model"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// doneFractionPercent: a campaign is done when strictly more than this share
// of its notifications were delivered. Exactly 80% is a failure.
const doneFractionPercent = 80

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id int) (*model.Campaign, error)
	List(ctx context.Context) ([]model.Campaign, error)
	Update(ctx context.Context, id int, name, content string, launchDate time.Time) (*model.Campaign, error)
	Delete(ctx context.Context, id int) error
	Run(ctx context.Context, id int) (*model.Campaign, error)
	Acquire(ctx context.Context) (*model.Campaign, error)
	Complete(ctx context.Context, id int) (*model.Campaign, error)
	CompleteNext(ctx context.Context) (*model.Campaign, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, name, content, status, launch_date, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Content, &c.Status, &c.LaunchDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// ====================== CRUD ======================

// Create inserts a campaign in status created. Validation of the launch date
// (must not be in the past) belongs to the API boundary, not here.
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	c.Status = model.CampaignCreated
	query := `
        INSERT INTO campaigns (name, content, status, launch_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	err := r.DB.QueryRowContext(ctx, query, c.Name, c.Content, c.Status, c.LaunchDate).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("campaign name %q already exists", c.Name)
		}
		return err
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("campaign %d not found", id)
	}
	return c, err
}

func (r *CampaignRepository) List(ctx context.Context) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// Update rewrites name, content and launch date. Only campaigns still in
// status created can be modified; everything later in the lifecycle is
// frozen. The status row lock keeps a concurrent Acquire from flipping the
// campaign to running between the check and the write.
func (r *CampaignRepository) Update(ctx context.Context, id int, name, content string, launchDate time.Time) (*model.Campaign, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status model.CampaignStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM campaigns WHERE id=$1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("campaign %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if status != model.CampaignCreated {
		return nil, apperrors.NewConflict("campaign %d with status %s cannot be modified", id, status)
	}

	query := `
        UPDATE campaigns SET name=$1, content=$2, launch_date=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING ` + campaignColumns
	c, err := scanCampaign(tx.QueryRowContext(ctx, query, name, content, launchDate, id))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("campaign name %q already exists", name)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a campaign in any status; its notifications go with it via
// the cascade on the foreign key.
func (r *CampaignRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFound("campaign %d not found", id)
	}
	return nil
}

// ====================== State machine ======================

// Run is the administrative launch: it forces the campaign to running and
// stamps the launch date with the current time, skipping the scheduler.
// Terminal campaigns are refused; done and failed are final.
func (r *CampaignRepository) Run(ctx context.Context, id int) (*model.Campaign, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status model.CampaignStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM campaigns WHERE id=$1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("campaign %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if status.Terminal() {
		return nil, apperrors.NewConflict("campaign %d with status %s cannot be run", id, status)
	}

	query := `
        UPDATE campaigns SET status=$1, launch_date=NOW(), updated_at=NOW()
        WHERE id=$2
        RETURNING ` + campaignColumns
	c, err := scanCampaign(tx.QueryRowContext(ctx, query, model.CampaignRunning, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// Acquire hands exactly one eligible campaign (status created, launch date
// reached) to the caller and flips it to running, all in one transaction.
// FOR UPDATE SKIP LOCKED makes concurrent workers pick distinct rows instead
// of blocking on or double-acquiring the same one.
func (r *CampaignRepository) Acquire(ctx context.Context) (*model.Campaign, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
        SELECT ` + campaignColumns + `
        FROM campaigns
        WHERE status=$1 AND launch_date <= NOW()
        ORDER BY launch_date
        LIMIT 1
        FOR UPDATE SKIP LOCKED
    `
	c, err := scanCampaign(tx.QueryRowContext(ctx, query, model.CampaignCreated))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNoCampaignsAvailable
	}
	if err != nil {
		return nil, err
	}

	update := `
        UPDATE campaigns SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at
    `
	if err := tx.QueryRowContext(ctx, update, model.CampaignRunning, c.ID).Scan(&c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = model.CampaignRunning

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// Complete evaluates one running campaign against its notification outcomes
// and moves it to its terminal status. The campaign must be running
// (Conflict otherwise) and must have at least one notification (NotFound
// otherwise); completion cannot infer success from nothing.
func (r *CampaignRepository) Complete(ctx context.Context, id int) (*model.Campaign, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lock := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1 FOR UPDATE`
	c, err := scanCampaign(tx.QueryRowContext(ctx, lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("campaign %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if c.Status != model.CampaignRunning {
		return nil, apperrors.NewConflict("campaign %d with status %s cannot be completed", id, c.Status)
	}

	c, err = r.finishCampaign(ctx, tx, c)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// CompleteNext sweeps for any running campaign whose notifications are all
// resolved (none pending, at least one present) and completes it. Returns
// ErrNoCampaignsAvailable when nothing qualifies this cycle.
func (r *CampaignRepository) CompleteNext(ctx context.Context) (*model.Campaign, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
        SELECT ` + campaignColumns + `
        FROM campaigns c
        WHERE c.status=$1
          AND EXISTS (SELECT 1 FROM notifications n WHERE n.campaign_id = c.id)
          AND NOT EXISTS (SELECT 1 FROM notifications n WHERE n.campaign_id = c.id AND n.status=$2)
        LIMIT 1
        FOR UPDATE SKIP LOCKED
    `
	c, err := scanCampaign(tx.QueryRowContext(ctx, query, model.CampaignRunning, model.NotificationPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNoCampaignsAvailable
	}
	if err != nil {
		return nil, err
	}

	c, err = r.finishCampaign(ctx, tx, c)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// finishCampaign computes the delivered fraction within the caller's
// transaction and writes the terminal status.
func (r *CampaignRepository) finishCampaign(ctx context.Context, tx *sql.Tx, c *model.Campaign) (*model.Campaign, error) {
	// One query on the tx at a time: the cursor must be drained and closed
	// before the status update below.
	stats := `SELECT status, COUNT(*) FROM notifications WHERE campaign_id=$1 GROUP BY status`
	rows, err := tx.QueryContext(ctx, stats, c.ID)
	if err != nil {
		return nil, err
	}

	var total, delivered int
	for rows.Next() {
		var status model.NotificationStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		total += count
		if status == model.NotificationDelivered {
			delivered = count
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if total == 0 {
		return nil, apperrors.NewNotFound("no notifications in campaign %d", c.ID)
	}

	// delivered/total > 80% without floating point.
	status := model.CampaignFailed
	if delivered*100 > total*doneFractionPercent {
		status = model.CampaignDone
	}

	update := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`
	if err := tx.QueryRowContext(ctx, update, status, c.ID).Scan(&c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = status
	return c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
