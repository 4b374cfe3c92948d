package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kuba27x/Cinema-app/internal/adapter/repository/memory"
	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/Kuba27x/Cinema-app/internal/core/services"
)

type fixture struct {
	app     *app
	out     *bytes.Buffer
	store   *memory.Store
	showing domain.Showing
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	movie := store.AddMovie(domain.Movie{Title: "Up", Genre: domain.GenreAnimated, DurationMinutes: 96})
	showing, err := store.AddShowing(domain.Showing{
		MovieID:        movie.ID,
		StartsAt:       time.Date(2026, 3, 14, 18, 0, 0, 0, time.Local),
		HallNumber:     4,
		AvailableSeats: 96,
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &fixture{
		app: &app{
			catalog:       services.NewCatalogService(store, store, log),
			booking:       services.NewReservationService(store, nil, nil, services.WithLogger(log)),
			auditInterval: time.Millisecond,
			out:           out,
		},
		out:     out,
		store:   store,
		showing: showing,
	}
}

func (f *fixture) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	f.out.Reset()
	return commands[name](context.Background(), f.app, args)
}

func TestBookCmd_SeatsAndDrag(t *testing.T) {
	f := newFixture(t)

	err := f.run(t, "book",
		"--showing", f.showing.ID.String(),
		"--name", "Ada", "--email", "ada@example.com", "--phone", "123456789",
		"--seat", "1:Child", "--drag", "10-12", "--type", "Student",
	)
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "seats left")

	state, err := f.store.LoadSeatState(context.Background(), f.showing.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 11, 12}, state.Reserved.Sorted())
	assert.Equal(t, 92, state.AvailableSeats)

	stored, err := f.store.ListReservationsByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	var total float64
	for _, r := range stored {
		total += r.TicketPrice
	}
	assert.Equal(t, 12.0+3*20.0, total)
}

func TestBookCmd_ReservedSeatConflicts(t *testing.T) {
	f := newFixture(t)
	args := []string{
		"--showing", f.showing.ID.String(),
		"--name", "Ada", "--email", "ada@example.com", "--phone", "123456789",
	}

	require.NoError(t, f.run(t, "book", append(args, "--seat", "5")...))

	err := f.run(t, "book", append(args, "--seat", "5", "--seat", "6")...)
	assert.ErrorIs(t, err, domain.ErrSeatConflict)
	assert.Equal(t, 3, exitCode(err))
}

func TestBookCmd_DragSkipsReservedSeats(t *testing.T) {
	f := newFixture(t)
	args := []string{
		"--showing", f.showing.ID.String(),
		"--name", "Ada", "--email", "ada@example.com", "--phone", "123456789",
	}

	require.NoError(t, f.run(t, "book", append(args, "--seat", "22")...))
	require.NoError(t, f.run(t, "book", append(args, "--drag", "20-24")...))

	state, err := f.store.LoadSeatState(context.Background(), f.showing.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 21, 22, 23, 24}, state.Reserved.Sorted())
}

func TestBookCmd_InvalidInput(t *testing.T) {
	f := newFixture(t)

	err := f.run(t, "book", "--showing", f.showing.ID.String(),
		"--name", "Ada", "--email", "bad", "--phone", "123456789", "--seat", "1")
	assert.Equal(t, 2, exitCode(err))

	err = f.run(t, "book", "--showing", f.showing.ID.String(),
		"--name", "Ada", "--email", "ada@example.com", "--phone", "123456789", "--seat", "97")
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	err = f.run(t, "book", "--showing", f.showing.ID.String(), "--drag", "9-3")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSeatsCmd_RendersMap(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "book", "--showing", f.showing.ID.String(),
		"--name", "Ada", "--email", "ada@example.com", "--phone", "123456789", "--seat", "2"))

	require.NoError(t, f.run(t, "seats", "--showing", f.showing.ID.String()))

	out := f.out.String()
	assert.Contains(t, out, "A   1  --   3")
	assert.Contains(t, out, "95 of 96 seats free")
}

func TestSeatsCmd_JSON(t *testing.T) {
	f := newFixture(t)
	f.app.json = true

	require.NoError(t, f.run(t, "seats", "--showing", f.showing.ID.String()))

	var m seatMap
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &m))
	assert.Equal(t, 96, m.Available)
	assert.Equal(t, 8, m.Rows)
}

func TestShowingsAndMoviesCmd(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "movies", "--genre", "Animated"))
	assert.Contains(t, f.out.String(), "Up")

	require.NoError(t, f.run(t, "showings", "--day", "2026-03-14", "--from", "17", "--to", "19"))
	assert.Contains(t, f.out.String(), f.showing.ID.String())

	require.NoError(t, f.run(t, "showings", "--day", "2026-03-14", "--from", "8", "--to", "12"))
	assert.NotContains(t, f.out.String(), f.showing.ID.String())

	err := f.run(t, "showings")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceiptsCmd(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "book", "--showing", f.showing.ID.String(),
		"--name", "Ada", "--email", "ada@example.com", "--phone", "123456789", "--seat", "7:Senior"))

	require.NoError(t, f.run(t, "receipts", "--email", "ada@example.com"))
	assert.Contains(t, f.out.String(), "15.00")

	err := f.run(t, "receipts", "--email", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuditCmd(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "audit"))
	assert.Contains(t, f.out.String(), "consistent")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, commands["audit"](ctx, f.app, []string{"--watch"}))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 4, exitCode(domain.ErrNotFound))
	assert.Equal(t, 5, exitCode(&domain.PersistenceError{Op: "commit", Err: errors.New("x")}))
	assert.Equal(t, 1, exitCode(errors.New("other")))
}

func TestRun_HelpAndUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &out))
	assert.Contains(t, out.String(), "Commands:")

	err := run(context.Background(), []string{"dance"}, &out)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
