package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) LoadSeatState(ctx context.Context, showingID uuid.UUID) (*domain.SeatState, error) {
	query := `
	SELECT s.available_seats,
		COALESCE(array_agg(r.seat_number) FILTER (WHERE r.seat_number IS NOT NULL), '{}')
	FROM showings s
	LEFT JOIN reservations r ON r.showing_id = s.id
	WHERE s.id = $1
	GROUP BY s.id, s.available_seats
	`

	var available int
	var seats pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, showingID).Scan(&available, &seats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("showing %s: %w", showingID, domain.ErrNotFound)
		}
		return nil, err
	}

	reserved := domain.NewSeatSet()
	for _, n := range seats {
		reserved.Add(int(n))
	}
	return &domain.SeatState{ShowingID: showingID, Reserved: reserved, AvailableSeats: available}, nil
}

// CommitReservations locks the showing row, re-checks the counter and the
// requested seats, inserts the reservations and moves the counter, all in
// one transaction.
func (r *ReservationRepository) CommitReservations(ctx context.Context, commit domain.SeatCommit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `SELECT available_seats FROM showings WHERE id = $1 FOR UPDATE`, commit.ShowingID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("showing %s: %w", commit.ShowingID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to lock showing: %w", err)
	}
	if current != commit.ExpectedAvailable {
		return domain.ErrStaleSeatState
	}

	requested := commit.Seats().Sorted()
	seatArgs := make(pq.Int64Array, len(requested))
	for i, n := range requested {
		seatArgs[i] = int64(n)
	}

	rows, err := tx.QueryContext(ctx, `
	SELECT seat_number FROM reservations
	WHERE showing_id = $1 AND seat_number = ANY($2)
	`, commit.ShowingID, seatArgs)
	if err != nil {
		return fmt.Errorf("failed to check seats: %w", err)
	}
	taken := domain.NewSeatSet()
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan seat: %w", err)
		}
		taken.Add(n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to check seats: %w", err)
	}
	rows.Close()
	if taken.Len() > 0 {
		return domain.NewSeatConflict(taken)
	}

	queryItem := `
	INSERT INTO reservations (id, showing_id, customer_name, customer_email, customer_phone, seat_number, ticket_type, ticket_price, reserved_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	stmt, err := tx.PrepareContext(ctx, queryItem)
	if err != nil {
		return fmt.Errorf("failed to prepare reservation statement: %w", err)
	}

	defer stmt.Close()

	for _, res := range commit.Reservations {
		_, err := stmt.ExecContext(ctx, res.ID, res.ShowingID, res.CustomerName, res.CustomerEmail, res.CustomerPhone,
			res.SeatNumber, string(res.TicketType), res.TicketPrice, res.ReservedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				// Another writer got in without taking the row lock. Let the
				// caller re-read and find out which seat.
				return domain.ErrStaleSeatState
			}
			return fmt.Errorf("failed to insert reservation seat %d: %w", res.SeatNumber, err)
		}
	}

	result, err := tx.ExecContext(ctx, `
	UPDATE showings
	SET available_seats = $1
	WHERE id = $2 AND available_seats = $3
	`, commit.NewAvailable, commit.ShowingID, commit.ExpectedAvailable)
	if err != nil {
		return fmt.Errorf("failed to update seat counter: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrStaleSeatState
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ReservationRepository) ListReservationsByEmail(ctx context.Context, email string) ([]domain.Reservation, error) {
	query := `
	SELECT id, showing_id, customer_name, customer_email, customer_phone, seat_number, ticket_type, ticket_price, reserved_at
	FROM reservations
	WHERE lower(customer_email) = lower($1)
	ORDER BY reserved_at DESC, seat_number
	`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		var ticketType string
		if err := rows.Scan(
			&res.ID,
			&res.ShowingID,
			&res.CustomerName,
			&res.CustomerEmail,
			&res.CustomerPhone,
			&res.SeatNumber,
			&ticketType,
			&res.TicketPrice,
			&res.ReservedAt,
		); err != nil {
			return nil, err
		}
		res.TicketType = domain.TicketType(ticketType)
		out = append(out, res)
	}

	return out, rows.Err()
}

func (r *ReservationRepository) ListSeatCounters(ctx context.Context) ([]domain.SeatCounter, error) {
	query := `
	SELECT s.id, s.available_seats, COUNT(r.id)
	FROM showings s
	LEFT JOIN reservations r ON r.showing_id = s.id
	GROUP BY s.id, s.available_seats
	ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.SeatCounter
	for rows.Next() {
		var c domain.SeatCounter
		if err := rows.Scan(&c.ShowingID, &c.AvailableSeats, &c.ReservationCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}
