package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Kardex-api/internal/application/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Ensure TxRunner implements costeo.TxRunner.
var _ costeo.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es lo que
// hace atómica la confirmación de una corrida por grupo: kardex, detalles y
// marca de procesamiento se escriben todos o ninguno.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	txRepo repository.TransaccionRepository,
	kardexRepo repository.KardexRepository,
	detalleRepo repository.DetalleCosteoRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txRepo := NewTransaccionRepository(tx)
	kardexRepo := NewKardexRepository(tx)
	detalleRepo := NewDetalleCosteoRepository(tx)

	if err := fn(txRepo, kardexRepo, detalleRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
