package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventmanagement/internal/domain"
)

const registrationSelect = `
	SELECT r.id, r.event_id, e.title, r.user_id, u.username, r.status, r.payment_id,
		r.amount_paid, r.special_requirements, r.created_at, r.updated_at
	FROM event_registrations r
	JOIN events e ON e.id = r.event_id
	JOIN users u ON u.id = r.user_id`

const registrationDefaultOrder = ` ORDER BY r.created_at DESC, r.id DESC`

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &eventRegistrationRepository{
		DB: db,
	}
}

func scanRegistration(s rowScanner) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{}
	var status string
	var paymentID, requirements sql.NullString
	err := s.Scan(&reg.ID, &reg.EventID, &reg.EventTitle, &reg.UserID, &reg.Username, &status, &paymentID,
		&reg.AmountPaid, &requirements, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	reg.Status = domain.RegistrationStatus(status)
	reg.PaymentID = nullableString(paymentID)
	reg.SpecialRequirements = nullableString(requirements)
	return reg, nil
}

func (r *eventRegistrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	query := `
		INSERT INTO event_registrations (event_id, user_id, status, payment_id, amount_paid,
			special_requirements, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, string(reg.Status), reg.PaymentID, reg.AmountPaid,
		reg.SpecialRequirements, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

func (r *eventRegistrationRepository) GetByID(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	reg, err := scanRegistration(conn(ctx, r.DB).QueryRowContext(ctx, registrationSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *eventRegistrationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	var locked int64
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT id FROM event_registrations WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *eventRegistrationRepository) Update(ctx context.Context, reg *domain.EventRegistration) error {
	query := `
		UPDATE event_registrations
		SET status = $1, payment_id = $2, special_requirements = $3, updated_at = $4
		WHERE id = $5
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		string(reg.Status), reg.PaymentID, reg.SpecialRequirements, reg.UpdatedAt, reg.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrRegistrationNotFound
	}
	return nil
}

func (r *eventRegistrationRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM event_registrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrRegistrationNotFound
	}
	return nil
}

func (r *eventRegistrationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.EventRegistration, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []*domain.EventRegistration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *eventRegistrationRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.EventRegistration, error) {
	return r.list(ctx, registrationSelect+` WHERE r.event_id = $1`+registrationDefaultOrder, eventID)
}

func (r *eventRegistrationRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.EventRegistration, error) {
	return r.list(ctx, registrationSelect+` WHERE r.user_id = $1`+registrationDefaultOrder, userID)
}

func (r *eventRegistrationRepository) ListConfirmedByEventID(ctx context.Context, eventID int64) ([]*domain.EventRegistration, error) {
	query := registrationSelect + ` WHERE r.event_id = $1 AND r.status = $2` + registrationDefaultOrder
	return r.list(ctx, query, eventID, string(domain.RegistrationConfirmed))
}

func (r *eventRegistrationRepository) ListConfirmedByUserID(ctx context.Context, userID int64) ([]*domain.EventRegistration, error) {
	query := registrationSelect + ` WHERE r.user_id = $1 AND r.status = $2` + registrationDefaultOrder
	return r.list(ctx, query, userID, string(domain.RegistrationConfirmed))
}

func (r *eventRegistrationRepository) ExistsActive(ctx context.Context, eventID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM event_registrations
			WHERE event_id = $1 AND user_id = $2 AND status IN ('PENDING', 'CONFIRMED')
		)
	`
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}

func (r *eventRegistrationRepository) CountConfirmedByEventID(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1 AND status = $2`,
		eventID, string(domain.RegistrationConfirmed)).Scan(&n)
	return n, err
}

func (r *eventRegistrationRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM event_registrations`).Scan(&n)
	return n, err
}
