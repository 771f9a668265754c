package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// DetalleCosteoRepository es el sumidero de detalles de cruce y egresos
// pendientes. Atómico por grupo, igual que el kardex.
type DetalleCosteoRepository interface {
	// Reemplazar borra los detalles y pendientes vigentes del grupo y
	// persiste los de la corrida nueva.
	Reemplazar(ctx context.Context, grupo entity.GrupoCosteo, detalles []*entity.DetalleCosteo, pendientes []*entity.EgresoPendiente) error

	// ListarPorGrupo devuelve los detalles de cruce del grupo en orden de
	// emisión.
	ListarPorGrupo(ctx context.Context, grupo entity.GrupoCosteo) ([]*entity.DetalleCosteo, error)

	// ListarPendientes devuelve los egresos con faltante del grupo.
	ListarPendientes(ctx context.Context, grupo entity.GrupoCosteo) ([]*entity.EgresoPendiente, error)

	// EliminarDesde descarta detalles y pendientes con fecha >= desde. Con
	// grupo nil aplica a todos los grupos.
	EliminarDesde(ctx context.Context, grupo *entity.GrupoCosteo, desde time.Time) error
}
