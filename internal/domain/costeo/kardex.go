package costeo

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// BuildKardex pliega el flujo ordenado de transacciones y los detalles de
// cruce de los egresos en la secuencia de filas del kardex con saldo
// corrido. Determinista: con la misma historia produce exactamente las
// mismas filas, por lo que un recálculo reemplaza bit a bit a la corrida
// anterior.
//
// Efecto por tipo:
//   - INGRESO/AJUSTE_INGRESO: saldoCantidad += cant; saldoValor += cant×precio.
//   - EGRESO/AJUSTE_EGRESO: saldoCantidad -= cantidad cruzada; saldoValor -=
//     costo asignado. El faltante no cruzado no mueve el saldo: nunca salió
//     del inventario.
//   - CARGO resta valor; DIVIDENDO/RETORNO suman valor; la cantidad no cambia.
//   - NO_COSTEAR: fila de solo auditoría, saldo intacto.
func BuildKardex(grupo entity.GrupoCosteo, txs []*entity.Transaccion, detallesPorEgreso map[string][]*entity.DetalleCosteo) ([]*entity.KardexRow, error) {
	filas := make([]*entity.KardexRow, 0, len(txs))
	saldoCantidad := decimal.Zero
	saldoValor := decimal.Zero

	for _, tx := range txs {
		fila := &entity.KardexRow{
			ID:            tx.ID,
			Grupo:         grupo,
			TransaccionID: tx.ID,
			Fecha:         tx.Fecha,
			Secuencia:     tx.Secuencia,
			TipoContable:  tx.TipoContable,
			Cantidad:      tx.Cantidad,
			Precio:        tx.Precio,
		}

		switch {
		case tx.EsIngreso():
			saldoCantidad = saldoCantidad.Add(tx.Cantidad)
			saldoValor = saldoValor.Add(tx.Cantidad.Mul(tx.Precio))

		case tx.EsEgreso():
			detalles := detallesPorEgreso[tx.ID]
			cruzada := decimal.Zero
			costo := decimal.Zero
			utilidad := decimal.Zero
			for _, d := range detalles {
				cruzada = cruzada.Add(d.CantidadUsada)
				costo = costo.Add(d.CostoTotal())
				utilidad = utilidad.Add(tx.Precio.Sub(d.CostoUnitario).Mul(d.CantidadUsada))
			}
			saldoCantidad = saldoCantidad.Sub(cruzada)
			saldoValor = saldoValor.Sub(costo)
			if saldoCantidad.IsNegative() {
				return nil, &domain.InvarianteError{
					Grupo:   grupo,
					Detalle: "saldo negativo tras egreso " + tx.ID + ": " + saldoCantidad.String(),
				}
			}
			fila.CantidadCruzada = cruzada
			fila.CostoAsignado = costo
			fila.UtilidadRealizada = utilidad
			if cruzada.IsPositive() {
				fila.Margen = tx.Precio.Sub(costo.Div(cruzada))
			}

		case tx.AfectaCaja():
			saldoValor = saldoValor.Add(tx.EfectoCaja())
		}
		// NO_COSTEAR cae aquí sin tocar saldos.

		fila.SaldoCantidad = saldoCantidad
		fila.SaldoValor = saldoValor
		if saldoCantidad.IsPositive() {
			fila.CostoUnitario = saldoValor.Div(saldoCantidad)
		} else {
			// Con saldo cero el costo unitario es cero por definición, no un error.
			fila.CostoUnitario = decimal.Zero
		}
		filas = append(filas, fila)
	}
	return filas, nil
}

// ResultadoCosteo es la salida completa de costear un grupo: filas de kardex,
// detalles de cruce, egresos con faltante y lotes (abiertos y agotados).
type ResultadoCosteo struct {
	Grupo      entity.GrupoCosteo
	Filas      []*entity.KardexRow
	Detalles   []*entity.DetalleCosteo
	Pendientes []*entity.EgresoPendiente
	Lotes      []*entity.Lote
}

// CostearGrupo corre el pipeline puro de un grupo: ordena el flujo, cruza
// FIFO y construye el kardex. Los faltantes por saldo insuficiente no abortan
// la corrida (quedan en Pendientes); una violación de invariante sí.
func CostearGrupo(grupo entity.GrupoCosteo, txs []*entity.Transaccion) (*ResultadoCosteo, error) {
	OrdenarTransacciones(txs)

	m := NewMatcher(grupo)
	for _, tx := range txs {
		if err := m.Procesar(tx); err != nil {
			if errors.Is(err, domain.ErrSaldoInsuficiente) {
				continue
			}
			return nil, err
		}
	}

	porEgreso := make(map[string][]*entity.DetalleCosteo)
	for _, d := range m.Detalles() {
		porEgreso[d.EgresoID] = append(porEgreso[d.EgresoID], d)
	}

	filas, err := BuildKardex(grupo, txs, porEgreso)
	if err != nil {
		return nil, err
	}
	return &ResultadoCosteo{
		Grupo:      grupo,
		Filas:      filas,
		Detalles:   m.Detalles(),
		Pendientes: m.Pendientes(),
		Lotes:      m.Ledger().Lotes(),
	}, nil
}
