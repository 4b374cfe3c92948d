package domain

import (
	"time"

	"github.com/google/uuid"
)

type Genre string

const (
	GenreAction      Genre = "Action"
	GenreSciFi       Genre = "Sci-Fi"
	GenreAnimated    Genre = "Animated"
	GenreDocumentary Genre = "Documentary"
	GenreAdventure   Genre = "Adventure"
)

var Genres = []Genre{GenreAction, GenreSciFi, GenreAnimated, GenreDocumentary, GenreAdventure}

func (g Genre) Valid() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

type Movie struct {
	ID              uuid.UUID
	Title           string
	Description     string
	PosterRef       string
	DurationMinutes int
	Genre           Genre
}

type Showing struct {
	ID             uuid.UUID
	MovieID        uuid.UUID
	StartsAt       time.Time
	HallNumber     int
	AvailableSeats int
}
