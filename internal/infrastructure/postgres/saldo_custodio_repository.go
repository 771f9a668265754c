package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.SaldoCustodioRepository = (*SaldoCustodioRepo)(nil)

// SaldoCustodioRepo implementación de SaldoCustodioRepository sobre PostgreSQL.
// Los saldos los carga el proceso de cartolas; el motor solo los lee, por eso
// va directo al pool y no participa del TxRunner.
type SaldoCustodioRepo struct {
	pool *pgxpool.Pool
}

// NewSaldoCustodioRepository construye el adaptador de saldos de custodio.
func NewSaldoCustodioRepository(pool *pgxpool.Pool) *SaldoCustodioRepo {
	return &SaldoCustodioRepo{pool: pool}
}

// Obtener devuelve el saldo informado por el custodio para el grupo a la
// fecha, o nil si el custodio no reportó.
func (r *SaldoCustodioRepo) Obtener(ctx context.Context, grupo entity.GrupoCosteo, fecha time.Time) (*entity.SaldoCustodio, error) {
	query := `
		SELECT empresa_id, custodio_id, instrumento_id, cuenta, fecha, cantidad, valor
		FROM saldos_custodio
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		  AND fecha = $5`
	var s entity.SaldoCustodio
	err := r.pool.QueryRow(ctx, query,
		grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta, fecha,
	).Scan(
		&s.Grupo.EmpresaID, &s.Grupo.CustodioID, &s.Grupo.InstrumentoID, &s.Grupo.Cuenta,
		&s.Fecha, &s.Cantidad, &s.Valor,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("obtener saldo de custodio: %w", err)
	}
	return &s, nil
}
