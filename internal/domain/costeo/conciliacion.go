package costeo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// Tolerancia define hasta dónde una diferencia contra el custodio se
// considera ruido y no amerita ajuste. Viene de configuración, nunca se
// codifica aquí.
type Tolerancia struct {
	Cantidad decimal.Decimal
	Valor    decimal.Decimal
}

// Conciliar compara el último saldo del kardex de un grupo contra el saldo
// informado por el custodio a una fecha y propone ajustes si la diferencia
// excede la tolerancia. Función pura: el caller resuelve la última fila a la
// fecha y el saldo informado; aquí solo se decide.
//
//   - Ambas diferencias dentro de tolerancia: EXITO, sin ajustes.
//   - Diferencia de cantidad fuera de tolerancia: un AjustePropuesto
//     (INGRESO si el custodio reporta más que el kardex, EGRESO si menos)
//     por el valor absoluto de la diferencia, con fecha efectiva igual a la
//     fecha conciliada. EXITO_CON_AJUSTE.
//   - Datos incompletos (sin saldo informado o sin historia de kardex):
//     FALLO con mensaje; no se propone nada.
//   - Diferencia solo de valor (cantidad cuadra): no hay ajuste de cantidad
//     que la corrija; FALLO para revisión manual.
//
// No tiene efectos: el ajuste solo actúa cuando un caller lo acepta y lo
// convierte en transacción AJUSTE_*, que reentra al cruce en la siguiente
// corrida.
func Conciliar(grupo entity.GrupoCosteo, fecha time.Time, ultimaFila *entity.KardexRow, saldo *entity.SaldoCustodio, tol Tolerancia) entity.ResultadoConciliacion {
	if saldo == nil {
		return entity.ResultadoConciliacion{
			Grupo:   grupo,
			Estado:  entity.EstadoFallo,
			Mensaje: fmt.Sprintf("sin saldo informado por el custodio para %s al %s", grupo, fecha.Format("2006-01-02")),
		}
	}
	if ultimaFila == nil {
		return entity.ResultadoConciliacion{
			Grupo:   grupo,
			Estado:  entity.EstadoFallo,
			Mensaje: fmt.Sprintf("el grupo %s no tiene historia de kardex al %s", grupo, fecha.Format("2006-01-02")),
		}
	}

	deltaCantidad := saldo.Cantidad.Sub(ultimaFila.SaldoCantidad)
	deltaValor := saldo.Valor.Sub(ultimaFila.SaldoValor)

	if deltaCantidad.Abs().LessThanOrEqual(tol.Cantidad) && deltaValor.Abs().LessThanOrEqual(tol.Valor) {
		return entity.ResultadoConciliacion{
			Grupo:   grupo,
			Estado:  entity.EstadoExito,
			Mensaje: "kardex cuadra con el custodio",
		}
	}

	if deltaCantidad.Abs().GreaterThan(tol.Cantidad) {
		tipo := entity.AjusteIngreso
		if deltaCantidad.IsNegative() {
			tipo = entity.AjusteEgreso
		}
		ajuste := entity.AjustePropuesto{
			Grupo:         grupo,
			Tipo:          tipo,
			Cantidad:      deltaCantidad.Abs(),
			FechaEfectiva: fecha,
			Motivo: fmt.Sprintf("custodio reporta %s, kardex tiene %s (diferencia %s)",
				saldo.Cantidad, ultimaFila.SaldoCantidad, deltaCantidad),
		}
		return entity.ResultadoConciliacion{
			Grupo:   grupo,
			Estado:  entity.EstadoExitoConAjuste,
			Mensaje: fmt.Sprintf("diferencia de cantidad %s fuera de tolerancia %s", deltaCantidad, tol.Cantidad),
			Ajustes: []entity.AjustePropuesto{ajuste},
		}
	}

	// La cantidad cuadra pero el valor no: ningún ajuste de cantidad lo
	// corrige, va a revisión manual.
	return entity.ResultadoConciliacion{
		Grupo:  grupo,
		Estado: entity.EstadoFallo,
		Mensaje: fmt.Sprintf("diferencia de valor %s fuera de tolerancia %s con cantidad cuadrada; requiere revisión manual",
			deltaValor, tol.Valor),
	}
}
