package main

import (
	"context"
	"database/sql"

	"github.com/gnemet/motionpitch/internal/database"
	"github.com/gnemet/motionpitch/internal/pipeline"
)

// generationRunner is what the generate handler needs from the pipeline;
// tests substitute a fake.
type generationRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*database.Presentation, error)
}

// presentationStore is the persistence surface the handlers use.
type presentationStore interface {
	GuestUsage(guestID string) (int, error)
	IncrementGuestUsage(guestID string) (int, error)
	SavePresentation(p *database.Presentation) error
	GetPresentation(id string) (*database.Presentation, error)
	GetPresentationsByUser(userID int) ([]database.Presentation, error)
	SaveUser(u *database.User) (int, error)
	GetUserByEmail(email string) (*database.User, error)
	GetUserByID(id int) (*database.User, error)
}

// pgStore backs presentationStore with the Postgres repository functions.
type pgStore struct {
	db *sql.DB
}

func (s *pgStore) GuestUsage(guestID string) (int, error) {
	return database.GetGuestUsage(s.db, guestID)
}

func (s *pgStore) IncrementGuestUsage(guestID string) (int, error) {
	return database.IncrementGuestUsage(s.db, guestID)
}

func (s *pgStore) SavePresentation(p *database.Presentation) error {
	return database.SavePresentation(s.db, p)
}

func (s *pgStore) GetPresentation(id string) (*database.Presentation, error) {
	return database.GetPresentation(s.db, id)
}

func (s *pgStore) GetPresentationsByUser(userID int) ([]database.Presentation, error) {
	return database.GetPresentationsByUser(s.db, userID)
}

func (s *pgStore) SaveUser(u *database.User) (int, error) {
	return database.SaveUser(s.db, u)
}

func (s *pgStore) GetUserByEmail(email string) (*database.User, error) {
	return database.GetUserByEmail(s.db, email)
}

func (s *pgStore) GetUserByID(id int) (*database.User, error) {
	return database.GetUserByID(s.db, id)
}
