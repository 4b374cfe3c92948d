package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CounterDrift is a showing whose stored counter disagrees with its
// reservation rows.
type CounterDrift struct {
	ShowingID        uuid.UUID `json:"showing_id"`
	AvailableSeats   int       `json:"available_seats"`
	ReservationCount int       `json:"reservation_count"`
	Expected         int       `json:"expected_available"`
}

// AuditSeatCounters compares every showing's counter with
// capacity - count(reservations). It only reads.
func (s *ReservationService) AuditSeatCounters(ctx context.Context) ([]CounterDrift, error) {
	counters, err := s.repo.ListSeatCounters(ctx)
	if err != nil {
		return nil, storeError("list seat counters", err)
	}

	capacity := s.grid.Capacity()
	var drift []CounterDrift
	for _, c := range counters {
		expected := capacity - c.ReservationCount
		if c.AvailableSeats != expected {
			drift = append(drift, CounterDrift{
				ShowingID:        c.ShowingID,
				AvailableSeats:   c.AvailableSeats,
				ReservationCount: c.ReservationCount,
				Expected:         expected,
			})
		}
	}
	return drift, nil
}

// RunConsistencyAudit runs AuditSeatCounters every interval until ctx is
// done.
func (s *ReservationService) RunConsistencyAudit(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.InfoContext(ctx, "consistency audit started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("consistency audit stopped")
			return
		case <-ticker.C:
			s.auditOnce(ctx)
		}
	}
}

func (s *ReservationService) auditOnce(ctx context.Context) {
	drift, err := s.AuditSeatCounters(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "consistency audit failed", slog.Any("error", err))
		return
	}
	for _, d := range drift {
		s.log.WarnContext(ctx, "seat counter drift",
			slog.String("showing_id", d.ShowingID.String()),
			slog.Int("available_seats", d.AvailableSeats),
			slog.Int("reservations", d.ReservationCount),
			slog.Int("expected_available", d.Expected),
		)
	}
}
