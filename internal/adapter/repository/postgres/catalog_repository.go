package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/google/uuid"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const movieColumns = `id, title, description, poster_ref, duration_minutes, genre`

const showingColumns = `id, movie_id, starts_at, hall_number, available_seats`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (domain.Movie, error) {
	var m domain.Movie
	var genre string
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.PosterRef, &m.DurationMinutes, &genre)
	m.Genre = domain.Genre(genre)
	return m, err
}

func scanShowing(row rowScanner) (domain.Showing, error) {
	var s domain.Showing
	err := row.Scan(&s.ID, &s.MovieID, &s.StartsAt, &s.HallNumber, &s.AvailableSeats)
	return s, err
}

func (r *CatalogRepository) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY title`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}

	return movies, rows.Err()
}

func (r *CatalogRepository) GetMovie(ctx context.Context, movieID uuid.UUID) (*domain.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, movieID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("movie %s: %w", movieID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &m, nil
}

func (r *CatalogRepository) GetShowing(ctx context.Context, showingID uuid.UUID) (*domain.Showing, error) {
	s, err := scanShowing(r.db.QueryRowContext(ctx, `SELECT `+showingColumns+` FROM showings WHERE id = $1`, showingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("showing %s: %w", showingID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepository) ListShowings(ctx context.Context, movieID uuid.UUID) ([]domain.Showing, error) {
	query := `SELECT ` + showingColumns + ` FROM showings WHERE movie_id = $1 ORDER BY starts_at`
	return r.queryShowings(ctx, query, movieID)
}

func (r *CatalogRepository) ListShowingsBetween(ctx context.Context, from, to time.Time) ([]domain.Showing, error) {
	query := `SELECT ` + showingColumns + ` FROM showings WHERE starts_at >= $1 AND starts_at < $2 ORDER BY starts_at`
	return r.queryShowings(ctx, query, from, to)
}

func (r *CatalogRepository) queryShowings(ctx context.Context, query string, args ...any) ([]domain.Showing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var showings []domain.Showing
	for rows.Next() {
		s, err := scanShowing(rows)
		if err != nil {
			return nil, err
		}
		showings = append(showings, s)
	}

	return showings, rows.Err()
}
