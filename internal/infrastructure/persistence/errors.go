package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ordersync/backend/internal/domain/integration"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint failure from
// postgres or sqlite, translated by gorm or not.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// persistenceError classifies a store failure as integration.ErrPersistence
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", integration.ErrPersistence, op, err)
}

// duplicateError classifies a natural-key collision
func duplicateError(entity, key string) error {
	return fmt.Errorf("%w: %s %s", integration.ErrDuplicateRecord, entity, key)
}
