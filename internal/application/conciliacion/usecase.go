package conciliacion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/application/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain"
	domcosteo "github.com/jhoicas/Kardex-api/internal/domain/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// UseCase corre conciliaciones contra los saldos de custodio y convierte
// ajustes aceptados en transacciones AJUSTE_* que reentran al costeo.
// La decisión vive en el dominio (costeo.Conciliar); aquí solo se resuelven
// las entradas y se persisten las aceptaciones.
type UseCase struct {
	kardex        repository.KardexRepository
	saldos        repository.SaldoCustodioRepository
	transacciones repository.TransaccionRepository
	candados      *costeo.CandadoGrupos
	tolerancia    domcosteo.Tolerancia
	log           *logger.Logger
}

// NewUseCase construye el caso de uso. La tolerancia viene de configuración.
func NewUseCase(
	kardex repository.KardexRepository,
	saldos repository.SaldoCustodioRepository,
	transacciones repository.TransaccionRepository,
	candados *costeo.CandadoGrupos,
	tolerancia domcosteo.Tolerancia,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		kardex:        kardex,
		saldos:        saldos,
		transacciones: transacciones,
		candados:      candados,
		tolerancia:    tolerancia,
		log:           log,
	}
}

// Conciliar compara el kardex del grupo contra el saldo informado por el
// custodio a la fecha. Sin efectos: los ajustes propuestos solo actúan al
// aceptarse. No corre en paralelo con un costeo del mismo grupo.
func (uc *UseCase) Conciliar(ctx context.Context, grupo entity.GrupoCosteo, fecha time.Time) (entity.ResultadoConciliacion, error) {
	if !grupo.Valida() {
		return entity.ResultadoConciliacion{}, domain.ErrInvalidInput
	}
	liberar := uc.candados.Bloquear(grupo)
	defer liberar()

	ultimaFila, err := uc.kardex.UltimaFilaHasta(ctx, grupo, fecha)
	if err != nil {
		return entity.ResultadoConciliacion{}, fmt.Errorf("leer última fila de kardex: %w", err)
	}
	saldo, err := uc.saldos.Obtener(ctx, grupo, fecha)
	if err != nil {
		return entity.ResultadoConciliacion{}, fmt.Errorf("leer saldo de custodio: %w", err)
	}

	res := domcosteo.Conciliar(grupo, fecha, ultimaFila, saldo, uc.tolerancia)
	uc.log.Info().Str("grupo", grupo.String()).Str("estado", res.Estado).
		Time("fecha", fecha).Msg("conciliación ejecutada")
	return res, nil
}

// CalcularAjustes devuelve los ajustes propuestos por la conciliación a la
// fecha, filtrados por tipo (AjusteIngreso/AjusteEgreso; vacío = todos).
func (uc *UseCase) CalcularAjustes(ctx context.Context, grupo entity.GrupoCosteo, fecha time.Time, tipo string) ([]entity.AjustePropuesto, error) {
	res, err := uc.Conciliar(ctx, grupo, fecha)
	if err != nil {
		return nil, err
	}
	if tipo == "" {
		return res.Ajustes, nil
	}
	var filtrados []entity.AjustePropuesto
	for _, a := range res.Ajustes {
		if a.Tipo == tipo {
			filtrados = append(filtrados, a)
		}
	}
	return filtrados, nil
}

// AceptarAjuste convierte un ajuste propuesto en una transacción
// AJUSTE_INGRESO/AJUSTE_EGRESO. La transacción queda sin procesar y reentra
// al cruce en la siguiente corrida de costeo. Toma el candado del grupo: si
// la transacción nueva aterrizara en medio de una corrida del mismo grupo,
// MarcarProcesadas la marcaría sin haberla costeado y el ajuste se perdería.
func (uc *UseCase) AceptarAjuste(ctx context.Context, ajuste entity.AjustePropuesto) (*entity.Transaccion, error) {
	if !ajuste.Grupo.Valida() || !ajuste.Cantidad.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var tipoContable string
	switch ajuste.Tipo {
	case entity.AjusteIngreso:
		tipoContable = entity.TipoAjusteIngreso
	case entity.AjusteEgreso:
		tipoContable = entity.TipoAjusteEgreso
	default:
		return nil, domain.ErrInvalidInput
	}

	liberar := uc.candados.Bloquear(ajuste.Grupo)
	defer liberar()

	tx := &entity.Transaccion{
		ID:            uuid.New().String(),
		EmpresaID:     ajuste.Grupo.EmpresaID,
		CustodioID:    ajuste.Grupo.CustodioID,
		InstrumentoID: ajuste.Grupo.InstrumentoID,
		Cuenta:        ajuste.Grupo.Cuenta,
		Fecha:         ajuste.FechaEfectiva,
		TipoContable:  tipoContable,
		Cantidad:      ajuste.Cantidad,
	}
	if err := uc.transacciones.CrearAjuste(ctx, tx); err != nil {
		return nil, fmt.Errorf("persistir ajuste aceptado: %w", err)
	}
	uc.log.Info().Str("grupo", ajuste.Grupo.String()).Str("tipo", tipoContable).
		Str("cantidad", ajuste.Cantidad.String()).Msg("ajuste aceptado")
	return tx, nil
}
