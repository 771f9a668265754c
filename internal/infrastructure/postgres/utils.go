package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reconoce la violación de clave única de PostgreSQL
// (SQLSTATE 23505). La usan las inserciones idempotentes: un ajuste aceptado
// dos veces para el mismo grupo y fecha se reporta como domain.ErrDuplicate
// en vez de como error de infraestructura.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
