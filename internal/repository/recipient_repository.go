package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
	"github.com/alexpetro/campaign-notifier/internal/model"
)

type RecipientRepositoryInterface interface {
	Create(ctx context.Context, rec *model.Recipient) error
	GetByID(ctx context.Context, id int) (*model.Recipient, error)
	ListAll(ctx context.Context) ([]model.Recipient, error)
	Update(ctx context.Context, rec *model.Recipient) error
	Delete(ctx context.Context, id int) error
}

type RecipientRepository struct {
	DB *sql.DB
}

func (r *RecipientRepository) Create(ctx context.Context, rec *model.Recipient) error {
	query := `
        INSERT INTO recipients (name, lastname, age, contact_email)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	err := r.DB.QueryRowContext(ctx, query, rec.Name, rec.Lastname, rec.Age, rec.ContactEmail).Scan(&rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("recipient with email %q already exists", rec.ContactEmail)
		}
		return err
	}
	return nil
}

func (r *RecipientRepository) GetByID(ctx context.Context, id int) (*model.Recipient, error) {
	query := `SELECT id, name, lastname, age, contact_email FROM recipients WHERE id=$1`
	var rec model.Recipient
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&rec.ID, &rec.Name, &rec.Lastname, &rec.Age, &rec.ContactEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("recipient %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAll returns the full recipient snapshot. The orchestrator fans a
// campaign out to exactly this set; there is no pagination.
func (r *RecipientRepository) ListAll(ctx context.Context) ([]model.Recipient, error) {
	query := `SELECT id, name, lastname, age, contact_email FROM recipients ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := []model.Recipient{}
	for rows.Next() {
		var rec model.Recipient
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Lastname, &rec.Age, &rec.ContactEmail); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func (r *RecipientRepository) Update(ctx context.Context, rec *model.Recipient) error {
	query := `
        UPDATE recipients SET name=$1, lastname=$2, age=$3, contact_email=$4
        WHERE id=$5
    `
	res, err := r.DB.ExecContext(ctx, query, rec.Name, rec.Lastname, rec.Age, rec.ContactEmail, rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("recipient with email %q already exists", rec.ContactEmail)
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFound("recipient %d not found", rec.ID)
	}
	return nil
}

func (r *RecipientRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM recipients WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFound("recipient %d not found", id)
	}
	return nil
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)
