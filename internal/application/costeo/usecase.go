package costeo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// UseCase orquesta las corridas de costeo: descubre grupos con transacciones
// sin procesar, corre el pipeline puro de cada uno (cruce FIFO + kardex) y
// confirma el resultado de forma atómica por grupo vía TxRunner.
type UseCase struct {
	txRunner      TxRunner
	transacciones repository.TransaccionRepository
	kardex        repository.KardexRepository
	candados      *CandadoGrupos
	workers       int
	log           *logger.Logger
}

// NewUseCase construye el caso de uso. workers limita cuántos grupos se
// costean en paralelo; dentro de un grupo el orden FIFO es secuencial.
func NewUseCase(
	txRunner TxRunner,
	transacciones repository.TransaccionRepository,
	kardex repository.KardexRepository,
	candados *CandadoGrupos,
	workers int,
	log *logger.Logger,
) *UseCase {
	if workers < 1 {
		workers = 1
	}
	return &UseCase{
		txRunner:      txRunner,
		transacciones: transacciones,
		kardex:        kardex,
		candados:      candados,
		workers:       workers,
		log:           log,
	}
}

// ResultadoGrupo resume la corrida de un grupo.
type ResultadoGrupo struct {
	Grupo      entity.GrupoCosteo
	Filas      int
	Detalles   int
	Pendientes []*entity.EgresoPendiente
}

// ResultadoBatch resume una corrida completa: conteos por grupo y los grupos
// que quedaron con faltante para conciliación manual. La falla de un grupo
// nunca aborta el batch.
type ResultadoBatch struct {
	Corte                  time.Time
	Procesados             int
	Fallidos               int
	PendientesConciliacion []entity.GrupoCosteo
	Errores                map[string]string // grupo -> causa
}

// ProcesarCosteo corre el costeo de todos los grupos con transacciones sin
// procesar hasta el corte. Los grupos son independientes y se procesan en
// paralelo hasta el límite de workers; la cancelación del contexto se honra
// en los bordes entre grupos (un grupo a medio computar no confirma nada).
func (uc *UseCase) ProcesarCosteo(ctx context.Context, corte time.Time) (*ResultadoBatch, error) {
	grupos, err := uc.transacciones.ListarGrupos(ctx, corte)
	if err != nil {
		return nil, fmt.Errorf("listar grupos pendientes: %w", err)
	}

	resultado := &ResultadoBatch{Corte: corte, Errores: make(map[string]string)}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(uc.workers)
	for _, grupo := range grupos {
		grupo := grupo
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil // cancelado: no iniciar grupos nuevos
			}
			rg, err := uc.ProcesarGrupo(ctx, grupo, corte)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resultado.Fallidos++
				resultado.Errores[grupo.String()] = err.Error()
				uc.log.Error().Err(err).Str("grupo", grupo.String()).Msg("grupo falló, el batch continúa")
				return nil
			}
			resultado.Procesados++
			if len(rg.Pendientes) > 0 {
				resultado.PendientesConciliacion = append(resultado.PendientesConciliacion, grupo)
				uc.log.Warn().Str("grupo", grupo.String()).Int("egresos_pendientes", len(rg.Pendientes)).
					Msg("grupo con saldo insuficiente, marcado para conciliación manual")
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return resultado, err
	}
	uc.log.Info().Int("procesados", resultado.Procesados).Int("fallidos", resultado.Fallidos).
		Time("corte", corte).Msg("corrida de costeo terminada")
	return resultado, nil
}

// ProcesarGrupo corre el pipeline completo de un grupo: lee la historia
// ordenada, cruza FIFO, construye el kardex y confirma todo dentro de una
// transacción. Un recálculo reemplaza las filas vigentes; con historia sin
// cambios el resultado es idéntico bit a bit.
func (uc *UseCase) ProcesarGrupo(ctx context.Context, grupo entity.GrupoCosteo, corte time.Time) (*ResultadoGrupo, error) {
	if !grupo.Valida() {
		return nil, domain.ErrInvalidInput
	}
	liberar := uc.candados.Bloquear(grupo)
	defer liberar()

	var resultado *ResultadoGrupo
	err := uc.txRunner.Run(ctx, func(
		txRepo repository.TransaccionRepository,
		kardexRepo repository.KardexRepository,
		detalleRepo repository.DetalleCosteoRepository,
	) error {
		txs, err := txRepo.ListarPorGrupo(ctx, grupo, corte)
		if err != nil {
			return fmt.Errorf("leer transacciones del grupo: %w", err)
		}
		if len(txs) == 0 {
			resultado = &ResultadoGrupo{Grupo: grupo}
			return nil
		}

		res, err := costeo.CostearGrupo(grupo, txs)
		if err != nil {
			return err
		}
		if err := kardexRepo.Reemplazar(ctx, grupo, res.Filas); err != nil {
			return fmt.Errorf("confirmar kardex: %w", err)
		}
		if err := detalleRepo.Reemplazar(ctx, grupo, res.Detalles, res.Pendientes); err != nil {
			return fmt.Errorf("confirmar detalles de cruce: %w", err)
		}
		if err := txRepo.MarcarProcesadas(ctx, grupo, corte); err != nil {
			return fmt.Errorf("marcar transacciones procesadas: %w", err)
		}
		resultado = &ResultadoGrupo{
			Grupo:      grupo,
			Filas:      len(res.Filas),
			Detalles:   len(res.Detalles),
			Pendientes: res.Pendientes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Str("grupo", grupo.String()).Int("filas", resultado.Filas).Msg("grupo costeado")
	return resultado, nil
}

// GetKardex devuelve el kardex vigente del grupo ordenado por (fecha, secuencia).
func (uc *UseCase) GetKardex(ctx context.Context, grupo entity.GrupoCosteo) ([]*entity.KardexRow, error) {
	if !grupo.Valida() {
		return nil, domain.ErrInvalidInput
	}
	return uc.kardex.ListarPorGrupo(ctx, grupo)
}

// SaldoActual devuelve la cantidad en saldo de la última fila del grupo.
func (uc *UseCase) SaldoActual(ctx context.Context, grupo entity.GrupoCosteo) (decimal.Decimal, error) {
	if !grupo.Valida() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return uc.kardex.SaldoActual(ctx, grupo)
}

// ResetDesde invalida el estado de costeo desde una fecha: borra filas de
// kardex y detalles con fecha >= desde y desmarca las transacciones para que
// la próxima corrida las regenere. Con grupo nil aplica a todos los grupos.
// Destructivo y siempre explícito: el procesamiento normal jamás lo invoca.
func (uc *UseCase) ResetDesde(ctx context.Context, grupo *entity.GrupoCosteo, desde time.Time) error {
	if grupo != nil {
		if !grupo.Valida() {
			return domain.ErrInvalidInput
		}
		liberar := uc.candados.Bloquear(*grupo)
		defer liberar()
	}

	err := uc.txRunner.Run(ctx, func(
		txRepo repository.TransaccionRepository,
		kardexRepo repository.KardexRepository,
		detalleRepo repository.DetalleCosteoRepository,
	) error {
		if err := kardexRepo.EliminarDesde(ctx, grupo, desde); err != nil {
			return fmt.Errorf("eliminar kardex: %w", err)
		}
		if err := detalleRepo.EliminarDesde(ctx, grupo, desde); err != nil {
			return fmt.Errorf("eliminar detalles: %w", err)
		}
		if err := txRepo.MarcarNoProcesadasDesde(ctx, grupo, desde); err != nil {
			return fmt.Errorf("desmarcar transacciones: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if grupo != nil {
		uc.log.Info().Str("grupo", grupo.String()).Time("desde", desde).Msg("kardex invalidado")
	} else {
		uc.log.Info().Time("desde", desde).Msg("kardex invalidado para todos los grupos")
	}
	return nil
}
