package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"eventmanagement/internal/domain"
)

const confirmedCountExpr = `(SELECT COUNT(*) FROM event_registrations r WHERE r.event_id = e.id AND r.status = 'CONFIRMED')`

const eventSelect = `
	SELECT e.id, e.title, e.description, e.start_date, e.end_date, e.location, e.max_capacity,
		e.ticket_price, e.status, e.category_id, c.name, e.organizer_id,
		TRIM(u.first_name || ' ' || u.last_name), e.image_url, e.tags,
		` + confirmedCountExpr + `,
		e.created_at, e.updated_at
	FROM events e
	JOIN categories c ON c.id = e.category_id
	JOIN users u ON u.id = e.organizer_id`

const eventDefaultOrder = ` ORDER BY e.start_date ASC, e.id ASC`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	var image, tags sql.NullString
	err := s.Scan(&e.ID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Location, &e.MaxCapacity,
		&e.TicketPrice, &status, &e.CategoryID, &e.CategoryName, &e.OrganizerID,
		&e.OrganizerName, &image, &tags, &e.ConfirmedCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	e.ImageURL = nullableString(image)
	e.Tags = nullableString(tags)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, start_date, end_date, location, max_capacity,
			ticket_price, status, category_id, organizer_id, image_url, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartDate, e.EndDate, e.Location, e.MaxCapacity,
		e.TicketPrice, string(e.Status), e.CategoryID, e.OrganizerID, e.ImageURL, e.Tags, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetByIDForUpdate takes the row lock first, then reads the joined view in the
// same transaction.
func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	var locked int64
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, start_date = $3, end_date = $4, location = $5,
			max_capacity = $6, ticket_price = $7, status = $8, category_id = $9,
			image_url = $10, tags = $11, updated_at = $12
		WHERE id = $13
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		e.Title, e.Description, e.StartDate, e.EndDate, e.Location,
		e.MaxCapacity, e.TicketPrice, string(e.Status), e.CategoryID,
		e.ImageURL, e.Tags, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Delete removes the event; its registrations go with it via ON DELETE CASCADE.
func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// listPage runs the filtered page query and the matching count. where may be
// empty; its placeholders are numbered from $1.
func (r *eventRepository) listPage(ctx context.Context, where string, args []any, page domain.PageRequest) ([]*domain.Event, int, error) {
	page = page.Normalize()
	filter := ""
	if where != "" {
		filter = " WHERE " + where
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM events e` + filter
	if err := conn(ctx, r.DB).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	n := len(args)
	query := eventSelect + filter + eventDefaultOrder +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	pageArgs := append(append([]any{}, args...), page.Size, page.Offset())
	events, err := r.list(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByStatus(ctx context.Context, status domain.EventStatus, page domain.PageRequest) ([]*domain.Event, int, error) {
	return r.listPage(ctx, `e.status = $1`, []any{string(status)}, page)
}

func (r *eventRepository) ListAll(ctx context.Context, page domain.PageRequest) ([]*domain.Event, int, error) {
	return r.listPage(ctx, "", nil, page)
}

func (r *eventRepository) ListByCategoryID(ctx context.Context, categoryID int64, page domain.PageRequest) ([]*domain.Event, int, error) {
	return r.listPage(ctx, `e.category_id = $1`, []any{categoryID}, page)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID int64, page domain.PageRequest) ([]*domain.Event, int, error) {
	return r.listPage(ctx, `e.organizer_id = $1`, []any{organizerID}, page)
}

func (r *eventRepository) Search(ctx context.Context, term string, page domain.PageRequest) ([]*domain.Event, int, error) {
	where := `e.status = $1 AND (e.title ILIKE $2 OR e.description ILIKE $2)`
	return r.listPage(ctx, where, []any{string(domain.EventPublished), containsPattern(term)}, page)
}

func (r *eventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := eventSelect + ` WHERE e.status = $1 AND e.start_date > $2` + eventDefaultOrder
	return r.list(ctx, query, string(domain.EventPublished), now)
}

func (r *eventRepository) ListWithAvailableCapacity(ctx context.Context) ([]*domain.Event, error) {
	query := eventSelect + ` WHERE e.status = $1 AND e.max_capacity > ` + confirmedCountExpr + eventDefaultOrder
	return r.list(ctx, query, string(domain.EventPublished))
}

func (r *eventRepository) ExistsByCategoryID(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM events WHERE category_id = $1)`, categoryID).Scan(&exists)
	return exists, err
}

func (r *eventRepository) IsFull(ctx context.Context, id int64) (bool, error) {
	var full bool
	query := `SELECT e.max_capacity <= ` + confirmedCountExpr + ` FROM events e WHERE e.id = $1`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(&full)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrEventNotFound
		}
		return false, err
	}
	return full, nil
}

func (r *eventRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
