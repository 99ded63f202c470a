package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a unique constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrConflict
		case invalidTextRepresentation:
			// A malformed uuid cannot name a row.
			return ErrNotFound
		}
	}
	return err
}
