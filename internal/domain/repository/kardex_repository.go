package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// KardexRepository es el sumidero de filas de kardex. Se espera atomicidad
// por grupo: las filas de una corrida aparecen todas o ninguna.
type KardexRepository interface {
	// Reemplazar borra las filas vigentes del grupo y persiste las de la
	// corrida nueva (las filas se reemplazan, nunca se editan).
	Reemplazar(ctx context.Context, grupo entity.GrupoCosteo, filas []*entity.KardexRow) error

	// ListarPorGrupo devuelve el kardex del grupo ordenado por
	// (fecha, secuencia).
	ListarPorGrupo(ctx context.Context, grupo entity.GrupoCosteo) ([]*entity.KardexRow, error)

	// UltimaFilaHasta devuelve la última fila con fecha <= la indicada, o
	// nil si el grupo no tiene historia a esa fecha.
	UltimaFilaHasta(ctx context.Context, grupo entity.GrupoCosteo, fecha time.Time) (*entity.KardexRow, error)

	// SaldoActual devuelve la cantidad en saldo de la última fila del grupo;
	// cero si no hay historia.
	SaldoActual(ctx context.Context, grupo entity.GrupoCosteo) (decimal.Decimal, error)

	// EliminarDesde descarta las filas con fecha >= desde. Con grupo nil
	// aplica a todos los grupos.
	EliminarDesde(ctx context.Context, grupo *entity.GrupoCosteo, desde time.Time) error
}
