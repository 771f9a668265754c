package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.TransaccionRepository = (*TransaccionRepo)(nil)

// TransaccionRepo implementación de TransaccionRepository sobre PostgreSQL
// (usable con pool o tx).
type TransaccionRepo struct {
	q Querier
}

// NewTransaccionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransaccionRepository(q Querier) *TransaccionRepo {
	return &TransaccionRepo{q: q}
}

const columnasTransaccion = `id, empresa_id, custodio_id, instrumento_id, cuenta,
	fecha, secuencia, tipo_contable, cantidad, precio, moneda, procesada`

// ListarGrupos devuelve las claves de costeo con transacciones sin procesar
// hasta el corte.
func (r *TransaccionRepo) ListarGrupos(ctx context.Context, corte time.Time) ([]entity.GrupoCosteo, error) {
	query := `
		SELECT DISTINCT empresa_id, custodio_id, instrumento_id, cuenta
		FROM transacciones
		WHERE procesada = false AND fecha <= $1
		ORDER BY empresa_id, custodio_id, instrumento_id, cuenta`
	rows, err := r.q.Query(ctx, query, corte)
	if err != nil {
		return nil, fmt.Errorf("listar grupos pendientes: %w", err)
	}
	defer rows.Close()
	var grupos []entity.GrupoCosteo
	for rows.Next() {
		var g entity.GrupoCosteo
		if err := rows.Scan(&g.EmpresaID, &g.CustodioID, &g.InstrumentoID, &g.Cuenta); err != nil {
			return nil, fmt.Errorf("scan grupo: %w", err)
		}
		grupos = append(grupos, g)
	}
	return grupos, rows.Err()
}

// ListarPorGrupo devuelve la historia completa del grupo hasta el corte,
// ascendente por (fecha, secuencia).
func (r *TransaccionRepo) ListarPorGrupo(ctx context.Context, grupo entity.GrupoCosteo, corte time.Time) ([]*entity.Transaccion, error) {
	query := `
		SELECT ` + columnasTransaccion + `
		FROM transacciones
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		  AND fecha <= $5
		ORDER BY fecha, secuencia`
	rows, err := r.q.Query(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta, corte)
	if err != nil {
		return nil, fmt.Errorf("listar transacciones del grupo: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaccion
	for rows.Next() {
		var t entity.Transaccion
		if err := rows.Scan(
			&t.ID, &t.EmpresaID, &t.CustodioID, &t.InstrumentoID, &t.Cuenta,
			&t.Fecha, &t.Secuencia, &t.TipoContable, &t.Cantidad, &t.Precio, &t.Moneda, &t.Procesada,
		); err != nil {
			return nil, fmt.Errorf("scan transacción: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// MarcarProcesadas marca como procesadas las transacciones del grupo hasta el corte.
func (r *TransaccionRepo) MarcarProcesadas(ctx context.Context, grupo entity.GrupoCosteo, corte time.Time) error {
	query := `
		UPDATE transacciones SET procesada = true
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		  AND fecha <= $5 AND procesada = false`
	_, err := r.q.Exec(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta, corte)
	if err != nil {
		return fmt.Errorf("marcar procesadas: %w", err)
	}
	return nil
}

// MarcarNoProcesadasDesde revierte la marca de procesamiento desde una fecha.
// Con grupo nil aplica a todos los grupos.
func (r *TransaccionRepo) MarcarNoProcesadasDesde(ctx context.Context, grupo *entity.GrupoCosteo, desde time.Time) error {
	if grupo == nil {
		_, err := r.q.Exec(ctx, `UPDATE transacciones SET procesada = false WHERE fecha >= $1`, desde)
		if err != nil {
			return fmt.Errorf("desmarcar transacciones: %w", err)
		}
		return nil
	}
	query := `
		UPDATE transacciones SET procesada = false
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		  AND fecha >= $5`
	_, err := r.q.Exec(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta, desde)
	if err != nil {
		return fmt.Errorf("desmarcar transacciones del grupo: %w", err)
	}
	return nil
}

// CrearAjuste persiste una transacción AJUSTE_INGRESO/AJUSTE_EGRESO producto
// de un ajuste aceptado, con la siguiente secuencia del grupo. Queda sin
// procesar para reentrar al cruce en la siguiente corrida.
func (r *TransaccionRepo) CrearAjuste(ctx context.Context, tx *entity.Transaccion) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transacciones (id, empresa_id, custodio_id, instrumento_id, cuenta,
			fecha, secuencia, tipo_contable, cantidad, precio, moneda, procesada)
		SELECT $1, $2, $3, $4, $5, $6,
			COALESCE(MAX(secuencia), 0) + 1, $7, $8, $9, $10, false
		FROM transacciones
		WHERE empresa_id = $2 AND custodio_id = $3 AND instrumento_id = $4 AND cuenta = $5
		RETURNING secuencia`
	err := r.q.QueryRow(ctx, query,
		tx.ID, tx.EmpresaID, tx.CustodioID, tx.InstrumentoID, tx.Cuenta,
		tx.Fecha, tx.TipoContable, tx.Cantidad, tx.Precio, tx.Moneda,
	).Scan(&tx.Secuencia)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ajuste: %w", err)
	}
	return nil
}
