package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/timmy/jokegen/internal/domain"
	"gorm.io/gorm"
)

// classify tags a store error with the matching domain sentinel so services
// can branch on errors.Is without knowing the driver.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrRetryable,
		domain.ErrPersistence,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(domain.ErrNotFound, wrapped)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Join(domain.ErrRetryable, wrapped)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return errors.Join(domain.ErrConflict, wrapped)
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return errors.Join(domain.ErrRetryable, wrapped)
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch {
		case liteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return errors.Join(domain.ErrConflict, wrapped)
		case liteErr.Code == sqlite3.ErrBusy, liteErr.Code == sqlite3.ErrLocked:
			return errors.Join(domain.ErrRetryable, wrapped)
		}
	}

	return errors.Join(domain.ErrPersistence, wrapped)
}
