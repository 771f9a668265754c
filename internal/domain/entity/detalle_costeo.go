package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DetalleCosteo registra el cruce entre un egreso y un lote: cuánta cantidad
// del lote consumió ese egreso y a qué costo unitario. Se crea exactamente
// una vez por par (egreso, lote) durante el cruce y es inmutable después.
//
// Invariantes: la suma de CantidadUsada sobre un mismo lote nunca excede la
// cantidad original del lote; la suma sobre un mismo egreso iguala la
// cantidad del egreso salvo saldo insuficiente.
type DetalleCosteo struct {
	ID            string
	EgresoID      string
	IngresoID     string // transacción origen del lote consumido
	Fecha         time.Time
	CantidadUsada decimal.Decimal
	CostoUnitario decimal.Decimal // costo unitario del lote al momento del cruce
}

// CostoTotal devuelve CantidadUsada × CostoUnitario.
func (d *DetalleCosteo) CostoTotal() decimal.Decimal {
	return d.CantidadUsada.Mul(d.CostoUnitario)
}

// EgresoPendiente registra la cantidad de un egreso que no pudo cruzarse por
// falta de lotes. Queda excluida de la utilidad realizada hasta que un
// ajuste aporte el inventario faltante.
type EgresoPendiente struct {
	EgresoID         string
	Fecha            time.Time
	CantidadFaltante decimal.Decimal
}
