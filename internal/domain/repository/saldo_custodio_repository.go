package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// SaldoCustodioRepository expone los saldos informados por los custodios
// (cargados por el ETL de cartolas; solo lectura para el motor).
type SaldoCustodioRepository interface {
	// Obtener devuelve el saldo informado más reciente con fecha <= la
	// indicada, o (nil, nil) si el custodio no reportó.
	Obtener(ctx context.Context, grupo entity.GrupoCosteo, fecha time.Time) (*entity.SaldoCustodio, error)
}
