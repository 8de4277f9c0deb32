package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicate is returned when an insert or update violates a unique
// constraint (SQLSTATE 23505), including the partial indexes that guard
// "one open turno", "one reversal per movement" and "one closing arqueo".
var ErrDuplicate = errors.New("repository: unique constraint violated")

const pgUniqueViolation = "23505"

// translateError maps driver errors onto repository sentinels. Errors that
// carry no special meaning pass through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// Lock selects the row lock taken by a Find call running inside a transaction.
type Lock int

const (
	SinLock Lock = iota
	// LockCompartido is SELECT ... FOR SHARE.
	LockCompartido
	// LockExclusivo is SELECT ... FOR UPDATE.
	LockExclusivo
)

func (l Lock) apply(q *gorm.DB) *gorm.DB {
	switch l {
	case LockCompartido:
		return q.Clauses(clause.Locking{Strength: "SHARE"})
	case LockExclusivo:
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	default:
		return q
	}
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
