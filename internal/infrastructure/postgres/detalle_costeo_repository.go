package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.DetalleCosteoRepository = (*DetalleCosteoRepo)(nil)

// DetalleCosteoRepo implementación de DetalleCosteoRepository sobre PostgreSQL
// (usable con pool o tx). Maneja dos tablas: detalles_costeo y
// egresos_pendientes, siempre reemplazadas juntas.
type DetalleCosteoRepo struct {
	q Querier
}

// NewDetalleCosteoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDetalleCosteoRepository(q Querier) *DetalleCosteoRepo {
	return &DetalleCosteoRepo{q: q}
}

// Reemplazar borra los detalles y pendientes vigentes del grupo e inserta los
// de la corrida nueva.
func (r *DetalleCosteoRepo) Reemplazar(ctx context.Context, grupo entity.GrupoCosteo, detalles []*entity.DetalleCosteo, pendientes []*entity.EgresoPendiente) error {
	filtro := ` WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4`
	args := []any{grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta}

	if _, err := r.q.Exec(ctx, `DELETE FROM detalles_costeo`+filtro, args...); err != nil {
		return fmt.Errorf("borrar detalles vigentes: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM egresos_pendientes`+filtro, args...); err != nil {
		return fmt.Errorf("borrar pendientes vigentes: %w", err)
	}

	if len(detalles) > 0 {
		columnas := []string{
			"id", "empresa_id", "custodio_id", "instrumento_id", "cuenta",
			"egreso_id", "ingreso_id", "fecha", "cantidad_usada", "costo_unitario",
		}
		_, err := r.q.CopyFrom(ctx, pgx.Identifier{"detalles_costeo"}, columnas,
			pgx.CopyFromSlice(len(detalles), func(i int) ([]any, error) {
				d := detalles[i]
				return []any{
					d.ID, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta,
					d.EgresoID, d.IngresoID, d.Fecha, d.CantidadUsada, d.CostoUnitario,
				}, nil
			}))
		if err != nil {
			return fmt.Errorf("insertar detalles: %w", err)
		}
	}
	if len(pendientes) > 0 {
		columnas := []string{
			"empresa_id", "custodio_id", "instrumento_id", "cuenta",
			"egreso_id", "fecha", "cantidad_faltante",
		}
		_, err := r.q.CopyFrom(ctx, pgx.Identifier{"egresos_pendientes"}, columnas,
			pgx.CopyFromSlice(len(pendientes), func(i int) ([]any, error) {
				p := pendientes[i]
				return []any{
					grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta,
					p.EgresoID, p.Fecha, p.CantidadFaltante,
				}, nil
			}))
		if err != nil {
			return fmt.Errorf("insertar pendientes: %w", err)
		}
	}
	return nil
}

// ListarPorGrupo devuelve los detalles de cruce del grupo en orden de emisión.
func (r *DetalleCosteoRepo) ListarPorGrupo(ctx context.Context, grupo entity.GrupoCosteo) ([]*entity.DetalleCosteo, error) {
	query := `
		SELECT id, egreso_id, ingreso_id, fecha, cantidad_usada, costo_unitario
		FROM detalles_costeo
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		ORDER BY fecha, id`
	rows, err := r.q.Query(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta)
	if err != nil {
		return nil, fmt.Errorf("listar detalles: %w", err)
	}
	defer rows.Close()
	var list []*entity.DetalleCosteo
	for rows.Next() {
		var d entity.DetalleCosteo
		if err := rows.Scan(&d.ID, &d.EgresoID, &d.IngresoID, &d.Fecha, &d.CantidadUsada, &d.CostoUnitario); err != nil {
			return nil, fmt.Errorf("scan detalle: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// ListarPendientes devuelve los egresos con faltante del grupo.
func (r *DetalleCosteoRepo) ListarPendientes(ctx context.Context, grupo entity.GrupoCosteo) ([]*entity.EgresoPendiente, error) {
	query := `
		SELECT egreso_id, fecha, cantidad_faltante
		FROM egresos_pendientes
		WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4
		ORDER BY fecha, egreso_id`
	rows, err := r.q.Query(ctx, query, grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta)
	if err != nil {
		return nil, fmt.Errorf("listar pendientes: %w", err)
	}
	defer rows.Close()
	var list []*entity.EgresoPendiente
	for rows.Next() {
		var p entity.EgresoPendiente
		if err := rows.Scan(&p.EgresoID, &p.Fecha, &p.CantidadFaltante); err != nil {
			return nil, fmt.Errorf("scan pendiente: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// EliminarDesde descarta detalles y pendientes con fecha >= desde. Con grupo
// nil aplica a todos los grupos.
func (r *DetalleCosteoRepo) EliminarDesde(ctx context.Context, grupo *entity.GrupoCosteo, desde time.Time) error {
	if grupo == nil {
		if _, err := r.q.Exec(ctx, `DELETE FROM detalles_costeo WHERE fecha >= $1`, desde); err != nil {
			return fmt.Errorf("eliminar detalles: %w", err)
		}
		if _, err := r.q.Exec(ctx, `DELETE FROM egresos_pendientes WHERE fecha >= $1`, desde); err != nil {
			return fmt.Errorf("eliminar pendientes: %w", err)
		}
		return nil
	}
	filtro := ` WHERE empresa_id = $1 AND custodio_id = $2 AND instrumento_id = $3 AND cuenta = $4 AND fecha >= $5`
	args := []any{grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta, desde}
	if _, err := r.q.Exec(ctx, `DELETE FROM detalles_costeo`+filtro, args...); err != nil {
		return fmt.Errorf("eliminar detalles del grupo: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM egresos_pendientes`+filtro, args...); err != nil {
		return fmt.Errorf("eliminar pendientes del grupo: %w", err)
	}
	return nil
}
