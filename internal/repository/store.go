package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repositories hands out repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Accounts() AccountRepository
	Sessions() SessionRepository
	Sectors() SectorRepository
	Positions() PositionRepository
	Tickets() TicketRepository
	TicketEvents() TicketEventRepository
}

// DataStore is Repositories plus transactions. fn sees repositories bound to the transaction;
// returning an error rolls it back.
type DataStore interface {
	Repositories
	WithTx(ctx context.Context, fn func(tx Repositories) error) error
}

// Store is the Postgres-backed DataStore.
type Store struct {
	db         DBTX
	beginner   txBeginner
	bcryptCost int
}

// NewStore wraps pool. bcryptCost is used when accounts are created.
func NewStore(pool *pgxpool.Pool, bcryptCost int) *Store {
	s := &Store{bcryptCost: bcryptCost}
	if pool != nil {
		s.db = pool
		s.beginner = pool
	}
	return s
}

func (s *Store) Users() UserRepository { return NewUserRepository(s.db) }
func (s *Store) Accounts() AccountRepository { return NewAccountRepository(s.db, s.bcryptCost) }
func (s *Store) Sessions() SessionRepository { return NewSessionRepository(s.db) }
func (s *Store) Sectors() SectorRepository { return NewSectorRepository(s.db) }
func (s *Store) Positions() PositionRepository { return NewPositionRepository(s.db) }
func (s *Store) Tickets() TicketRepository { return NewTicketRepository(s.db) }
func (s *Store) TicketEvents() TicketEventRepository { return NewTicketEventRepository(s.db) }

// WithTx runs fn in a transaction. Calling it on a transactional store opens a savepoint.
func (s *Store) WithTx(ctx context.Context, fn func(tx Repositories) error) error {
	if s.beginner == nil {
		return errors.New("repository: database not configured")
	}
	return pgx.BeginFunc(ctx, s.beginner, func(tx pgx.Tx) error {
		return fn(&Store{db: tx, beginner: tx, bcryptCost: s.bcryptCost})
	})
}
