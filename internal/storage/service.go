package storage

import (
	"context"
	"database/sql"

	"github.com/ramonehamilton/mana-tomb/internal/storage/repository"
)

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Users repository.UserRepository
	Cards repository.CardRepository
	Decks repository.DeckRepository
}

func newRepositories(q repository.Querier) Repositories {
	return Repositories{
		Users: repository.NewUserRepository(q),
		Cards: repository.NewCardRepository(q),
		Decks: repository.NewDeckRepository(q),
	}
}

// Service provides access to repositories and transactions.
type Service struct {
	db    *DB
	repos Repositories
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:    db,
		repos: newRepositories(db.Conn()),
	}
}

// UserRepo returns the user repository.
func (s *Service) UserRepo() repository.UserRepository {
	return s.repos.Users
}

// CardRepo returns the card cache repository.
func (s *Service) CardRepo() repository.CardRepository {
	return s.repos.Cards
}

// DeckRepo returns the deck repository.
func (s *Service) DeckRepo() repository.DeckRepository {
	return s.repos.Decks
}

// InTx runs fn with repositories bound to a single transaction.
func (s *Service) InTx(ctx context.Context, fn func(Repositories) error) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(newRepositories(tx))
	})
}

// DB returns the underlying database.
func (s *Service) DB() *DB {
	return s.db
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}
