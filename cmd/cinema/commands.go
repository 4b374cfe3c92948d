package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/Kuba27x/Cinema-app/internal/core/services"
)

type app struct {
	catalog       *services.CatalogService
	booking       *services.ReservationService
	auditInterval time.Duration
	out           io.Writer
	json          bool
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"movies":   moviesCmd,
	"showings": showingsCmd,
	"seats":    seatsCmd,
	"book":     bookCmd,
	"receipts": receiptsCmd,
	"audit":    auditCmd,
}

func (a *app) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// emit writes v as JSON when --json is set, otherwise calls text.
func (a *app) emit(v any, text func(w *tabwriter.Writer)) error {
	if a.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func parseID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &domain.InvalidInputError{Field: field, Reason: "must be a UUID"}
	}
	return id, nil
}

func moviesCmd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("movies")
	genre := fs.String("genre", "", "only movies of this genre")
	search := fs.String("search", "", "case-insensitive title search")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var movies []domain.Movie
	var err error
	if *genre != "" {
		movies, err = a.catalog.MoviesByGenre(ctx, domain.Genre(*genre))
		if err == nil && *search != "" {
			q := strings.ToLower(*search)
			filtered := movies[:0]
			for _, m := range movies {
				if strings.Contains(strings.ToLower(m.Title), q) {
					filtered = append(filtered, m)
				}
			}
			movies = filtered
		}
	} else {
		movies, err = a.catalog.SearchMovies(ctx, *search)
	}
	if err != nil {
		return err
	}

	return a.emit(movies, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tGENRE\tMINUTES")
		for _, m := range movies {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", m.ID, m.Title, m.Genre, m.DurationMinutes)
		}
	})
}

func showingsCmd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("showings")
	movie := fs.String("movie", "", "movie ID")
	day := fs.String("day", "", "calendar day, YYYY-MM-DD")
	from := fs.Int("from", 0, "first start hour (with --day)")
	to := fs.Int("to", 24, "end hour, exclusive (with --day)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var showings []domain.Showing
	switch {
	case *movie != "":
		id, err := parseID("movie", *movie)
		if err != nil {
			return err
		}
		if showings, err = a.catalog.ListShowings(ctx, id); err != nil {
			return err
		}
	case *day != "":
		d, err := time.ParseInLocation("2006-01-02", *day, time.Local)
		if err != nil {
			return &domain.InvalidInputError{Field: "day", Reason: "must be YYYY-MM-DD"}
		}
		if fs.Changed("from") || fs.Changed("to") {
			showings, err = a.catalog.ShowingsByHours(ctx, d, *from, *to)
		} else {
			showings, err = a.catalog.ShowingsOn(ctx, d)
		}
		if err != nil {
			return err
		}
	default:
		return &domain.InvalidInputError{Field: "showings", Reason: "pass --movie or --day"}
	}

	return a.emit(showings, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tSTARTS\tHALL\tFREE")
		for _, s := range showings {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.ID, s.StartsAt.Local().Format("2006-01-02 15:04"), s.HallNumber, s.AvailableSeats)
		}
	})
}

type seatMap struct {
	ShowingID string `json:"showing_id"`
	Rows      int    `json:"rows"`
	Columns   int    `json:"columns"`
	Reserved  []int  `json:"reserved"`
	Available int    `json:"available"`
}

func seatsCmd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("seats")
	showing := fs.String("showing", "", "showing ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reserved, err := a.booking.ReservedSeats(ctx, *showing)
	if err != nil {
		return err
	}
	grid := a.booking.Grid()
	m := seatMap{
		ShowingID: *showing,
		Rows:      grid.Rows,
		Columns:   grid.Columns,
		Reserved:  reserved.Sorted(),
		Available: grid.Capacity() - reserved.Len(),
	}

	if a.json {
		return a.emit(m, nil)
	}
	renderSeatMap(a.out, grid, reserved)
	fmt.Fprintf(a.out, "%d of %d seats free\n", m.Available, grid.Capacity())
	return nil
}

// renderSeatMap prints one line per row, reserved seats as "--".
func renderSeatMap(w io.Writer, grid domain.SeatGrid, reserved domain.SeatSet) {
	for row := 0; row < grid.Rows; row++ {
		cells := make([]string, grid.Columns)
		for col := 0; col < grid.Columns; col++ {
			seat, _ := grid.SeatNumber(row, col)
			if reserved.Contains(seat) {
				cells[col] = " --"
			} else {
				cells[col] = fmt.Sprintf("%3d", seat)
			}
		}
		fmt.Fprintf(w, "%c %s\n", 'A'+row, strings.Join(cells, " "))
	}
}

func bookCmd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("book")
	showing := fs.String("showing", "", "showing ID")
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	phone := fs.String("phone", "", "customer phone, 9-15 digits or '+'")
	seats := fs.StringArray("seat", nil, "seat to book, N or N:TicketType (repeatable)")
	drags := fs.StringArray("drag", nil, "drag across seats A-B, skipping reserved ones (repeatable)")
	ticketType := fs.String("type", string(domain.TicketNormal), "ticket type for seats without an explicit one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := a.booking.NewSelection(ctx, *showing)
	if err != nil {
		return err
	}
	grid := a.booking.Grid()

	explicit := make(map[int]domain.TicketType)
	for _, s := range *seats {
		n, tt, err := parseSeatArg(s)
		if err != nil {
			return err
		}
		if !grid.Contains(n) {
			return &domain.OutOfRangeError{Kind: "seat", Value: n, Min: 1, Max: grid.Capacity()}
		}
		if session.IsReserved(n) {
			return domain.NewSeatConflict(domain.NewSeatSet(n))
		}
		if !session.IsSelected(n) {
			session.Tap(n)
		}
		if tt != "" {
			explicit[n] = tt
		}
	}
	for _, d := range *drags {
		first, last, err := parseRange(d)
		if err != nil {
			return err
		}
		session.DragStart()
		for n := first; n <= last; n++ {
			session.DragMove(n)
		}
		session.DragEnd()
	}

	pricing := a.booking.Pricing()
	tickets := session.Tickets(domain.TicketType(*ticketType), pricing)
	for i := range tickets {
		if tt, ok := explicit[tickets[i].SeatNumber]; ok {
			tickets[i].TicketType = tt
			tickets[i].QuotedPrice = pricing.PriceOf(tt)
		}
	}

	customer := domain.Customer{Name: *name, Email: *email, Phone: *phone}
	resp, err := a.booking.CreateReservation(ctx, services.RequestFromSelection(*showing, customer, tickets))
	if err != nil {
		return err
	}

	return a.emit(resp, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "SEAT\tTYPE\tPRICE\tRESERVATION")
		for _, r := range resp.Reservations {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", r.SeatNumber, r.TicketType, r.TicketPrice, r.ID)
		}
		fmt.Fprintf(w, "total\t\t%.2f\t\n", resp.TotalPrice)
		fmt.Fprintf(w, "seats left\t\t%d\t\n", resp.AvailableSeats)
	})
}

func parseSeatArg(s string) (int, domain.TicketType, error) {
	num, tt, _ := strings.Cut(s, ":")
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, "", &domain.InvalidInputError{Field: "seat", Reason: fmt.Sprintf("%q is not a seat number", s)}
	}
	return n, domain.TicketType(strings.TrimSpace(tt)), nil
}

func parseRange(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, "-")
	first, errA := strconv.Atoi(strings.TrimSpace(a))
	last, errB := strconv.Atoi(strings.TrimSpace(b))
	if !ok || errA != nil || errB != nil || last < first {
		return 0, 0, &domain.InvalidInputError{Field: "drag", Reason: fmt.Sprintf("%q is not a range like 10-14", s)}
	}
	return first, last, nil
}

func receiptsCmd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("receipts")
	email := fs.String("email", "", "customer email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	receipts, err := a.catalog.CustomerReservations(ctx, *email)
	if err != nil {
		return err
	}

	return a.emit(receipts, func(w *tabwriter.Writer) {
		if len(receipts) == 0 {
			fmt.Fprintln(w, "no reservations")
			return
		}
		for _, rc := range receipts {
			fmt.Fprintf(w, "%s\thall %d\t%s\n", rc.Showing.StartsAt.Local().Format("2006-01-02 15:04"), rc.Showing.HallNumber, rc.Showing.ID)
			for _, r := range rc.Reservations {
				fmt.Fprintf(w, "  seat %d\t%s\t%.2f\n", r.SeatNumber, r.TicketType, r.TicketPrice)
			}
			fmt.Fprintf(w, "  total\t\t%.2f\n", rc.Total)
		}
	})
}

func auditCmd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("audit")
	watch := fs.Bool("watch", false, "keep auditing every AUDIT_INTERVAL until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *watch {
		// Runs until interrupted; stopping is not an error.
		a.booking.RunConsistencyAudit(ctx, a.auditInterval)
		return nil
	}

	drift, err := a.booking.AuditSeatCounters(ctx)
	if err != nil {
		return err
	}
	return a.emit(drift, func(w *tabwriter.Writer) {
		if len(drift) == 0 {
			fmt.Fprintln(w, "all seat counters consistent")
			return
		}
		fmt.Fprintln(w, "SHOWING\tCOUNTER\tRESERVATIONS\tEXPECTED")
		for _, d := range drift {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", d.ShowingID, d.AvailableSeats, d.ReservationCount, d.Expected)
		}
	})
}
