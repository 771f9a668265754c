package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// TransaccionRepository es el puerto del feed de transacciones normalizadas.
// El motor las lee, nunca las muta; solo marca su estado de procesamiento y
// crea las transacciones de ajuste aceptadas.
type TransaccionRepository interface {
	// ListarGrupos devuelve las claves de costeo con transacciones sin
	// procesar hasta la fecha de corte.
	ListarGrupos(ctx context.Context, corte time.Time) ([]entity.GrupoCosteo, error)

	// ListarPorGrupo devuelve la historia completa del grupo hasta el corte,
	// ascendente por fecha con desempate estable por secuencia de inserción.
	ListarPorGrupo(ctx context.Context, grupo entity.GrupoCosteo, corte time.Time) ([]*entity.Transaccion, error)

	// MarcarProcesadas marca como procesadas las transacciones del grupo
	// hasta el corte.
	MarcarProcesadas(ctx context.Context, grupo entity.GrupoCosteo, corte time.Time) error

	// MarcarNoProcesadasDesde revierte la marca de procesamiento desde una
	// fecha. Con grupo nil aplica a todos los grupos.
	MarcarNoProcesadasDesde(ctx context.Context, grupo *entity.GrupoCosteo, desde time.Time) error

	// CrearAjuste persiste una transacción AJUSTE_INGRESO/AJUSTE_EGRESO
	// producto de un ajuste aceptado, asignándole la siguiente secuencia.
	CrearAjuste(ctx context.Context, tx *entity.Transaccion) error
}
