package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

// KardexRepo implementación de KardexRepository sobre PostgreSQL (usable con
// pool o tx). Las filas de una corrida se escriben con delete + CopyFrom; la
// atomicidad la aporta la transacción del TxRunner.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

const columnasKardex = `id, empresa_id, custodio_id, instrumento_id, cuenta, transaccion_id,
	fecha, secuencia, tipo_contable, cantidad, precio, saldo_cantidad, saldo_valor,
	costo_unitario, cantidad_cruzada, costo_asignado, margen, utilidad_realizada`

// Reemplazar borra las filas vigentes del grupo e inserta las de la corrida
// nueva. CopyFrom mantiene razonable el costo con historias de miles de filas.
func (r *KardexRepo) Reemplazar(ctx context.Context, grupo entity.GrupoCosteo, filas []*entity.KardexRow) error {
	query := `
		DELETE FROM kardex
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4`
	if _, err := r.q.Exec(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta); err != nil {
		return fmt.Errorf("borrar kardex vigente: %w", err)
	}
	if len(filas) == 0 {
		return nil
	}

	columnas := []string{
		"id", "empresa_id", "custodio_id", "instrumento_id", "cuenta", "transaccion_id",
		"fecha", "secuencia", "tipo_contable", "cantidad", "precio", "saldo_cantidad",
		"saldo_valor", "costo_unitario", "cantidad_cruzada", "costo_asignado", "margen",
		"utilidad_realizada",
	}
	_, err := r.q.CopyFrom(ctx, pgx.Identifier{"kardex"}, columnas,
		pgx.CopyFromSlice(len(filas), func(i int) ([]any, error) {
			f := filas[i]
			return []any{
				f.ID, f.Grupo.EmpresaID, f.Grupo.CustodioID, f.Grupo.InstrumentoID, f.Grupo.Cuenta,
				f.TransaccionID, f.Fecha, f.Secuencia, f.TipoContable, f.Cantidad, f.Precio,
				f.SaldoCantidad, f.SaldoValor, f.CostoUnitario, f.CantidadCruzada,
				f.CostoAsignado, f.Margen, f.UtilidadRealizada,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("insertar kardex: %w", err)
	}
	return nil
}

// ListarPorGrupo devuelve el kardex del grupo ordenado por (fecha, secuencia).
func (r *KardexRepo) ListarPorGrupo(ctx context.Context, grupo entity.GrupoCosteo) ([]*entity.KardexRow, error) {
	query := `
		SELECT ` + columnasKardex + `
		FROM kardex
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		ORDER BY fecha, secuencia`
	rows, err := r.q.Query(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta)
	if err != nil {
		return nil, fmt.Errorf("listar kardex: %w", err)
	}
	defer rows.Close()
	var list []*entity.KardexRow
	for rows.Next() {
		f, err := scanKardexRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// UltimaFilaHasta devuelve la última fila con fecha <= la indicada, o nil si
// el grupo no tiene historia a esa fecha.
func (r *KardexRepo) UltimaFilaHasta(ctx context.Context, grupo entity.GrupoCosteo, fecha time.Time) (*entity.KardexRow, error) {
	query := `
		SELECT ` + columnasKardex + `
		FROM kardex
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		  AND fecha <= $5
		ORDER BY fecha DESC, secuencia DESC
		LIMIT 1`
	rows, err := r.q.Query(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta, fecha)
	if err != nil {
		return nil, fmt.Errorf("última fila de kardex: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanKardexRow(rows)
}

// SaldoActual devuelve la cantidad en saldo de la última fila del grupo; cero
// si no hay historia.
func (r *KardexRepo) SaldoActual(ctx context.Context, grupo entity.GrupoCosteo) (decimal.Decimal, error) {
	query := `
		SELECT saldo_cantidad
		FROM kardex
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		ORDER BY fecha DESC, secuencia DESC
		LIMIT 1`
	var saldo decimal.Decimal
	err := r.q.QueryRow(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta).Scan(&saldo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("saldo actual: %w", err)
	}
	return saldo, nil
}

// EliminarDesde descarta las filas con fecha >= desde. Con grupo nil aplica a
// todos los grupos.
func (r *KardexRepo) EliminarDesde(ctx context.Context, grupo *entity.GrupoCosteo, desde time.Time) error {
	if grupo == nil {
		if _, err := r.q.Exec(ctx, `DELETE FROM kardex WHERE fecha >= $1`, desde); err != nil {
			return fmt.Errorf("eliminar kardex: %w", err)
		}
		return nil
	}
	query := `
		DELETE FROM kardex
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		  AND fecha >= $5`
	_, err := r.q.Exec(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta, desde)
	if err != nil {
		return fmt.Errorf("eliminar kardex del grupo: %w", err)
	}
	return nil
}

func scanKardexRow(rows pgx.Rows) (*entity.KardexRow, error) {
	var f entity.KardexRow
	if err := rows.Scan(
		&f.ID, &f.Grupo.EmpresaID, &f.Grupo.CustodioID, &f.Grupo.InstrumentoID, &f.Grupo.Cuenta,
		&f.TransaccionID, &f.Fecha, &f.Secuencia, &f.TipoContable, &f.Cantidad, &f.Precio,
		&f.SaldoCantidad, &f.SaldoValor, &f.CostoUnitario, &f.CantidadCruzada,
		&f.CostoAsignado, &f.Margen, &f.UtilidadRealizada,
	); err != nil {
		return nil, fmt.Errorf("scan fila de kardex: %w", err)
	}
	return &f, nil
}
