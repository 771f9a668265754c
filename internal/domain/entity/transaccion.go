package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos contables de una transacción.
const (
	TipoIngreso       = "INGRESO"        // compra: crea un lote
	TipoEgreso        = "EGRESO"         // venta: consume lotes FIFO
	TipoCargo         = "CARGO"          // afecta caja en negativo, no toca lotes
	TipoDividendo     = "DIVIDENDO"      // afecta caja en positivo
	TipoRetorno       = "RETORNO"        // afecta caja en positivo
	TipoNoCostear     = "NO_COSTEAR"     // pasa al kardex sin efecto en saldos
	TipoAjusteIngreso = "AJUSTE_INGRESO" // ajuste de conciliación aceptado (entrada)
	TipoAjusteEgreso  = "AJUSTE_EGRESO"  // ajuste de conciliación aceptado (salida)
)

// Transaccion es el registro normalizado que entra al motor de costeo.
// La crea la capa de normalización (ETL de cartolas); el motor la lee,
// nunca la muta. Una vez cruzada queda referenciada por DetalleCosteo.
type Transaccion struct {
	ID            string
	EmpresaID     string
	CustodioID    string
	InstrumentoID string
	Cuenta        string
	Fecha         time.Time
	// Secuencia es un número de inserción monótono por grupo; define el
	// desempate cuando dos transacciones (o lotes) comparten fecha.
	Secuencia    int64
	TipoContable string
	Cantidad     decimal.Decimal
	Precio       decimal.Decimal
	Moneda       string
	Procesada    bool
}

// Grupo devuelve la clave de costeo de la transacción. Función pura y total
// para una transacción bien formada.
func (t *Transaccion) Grupo() GrupoCosteo {
	return GrupoCosteo{
		EmpresaID:     t.EmpresaID,
		CustodioID:    t.CustodioID,
		InstrumentoID: t.InstrumentoID,
		Cuenta:        t.Cuenta,
	}
}

// EsIngreso indica si la transacción crea un lote (INGRESO o AJUSTE_INGRESO).
func (t *Transaccion) EsIngreso() bool {
	return t.TipoContable == TipoIngreso || t.TipoContable == TipoAjusteIngreso
}

// EsEgreso indica si la transacción consume lotes (EGRESO o AJUSTE_EGRESO).
func (t *Transaccion) EsEgreso() bool {
	return t.TipoContable == TipoEgreso || t.TipoContable == TipoAjusteEgreso
}

// AfectaCaja indica si la transacción mueve solo valor, no cantidad.
func (t *Transaccion) AfectaCaja() bool {
	switch t.TipoContable {
	case TipoCargo, TipoDividendo, TipoRetorno:
		return true
	}
	return false
}

// EfectoCaja devuelve el monto con signo según el tipo: CARGO resta,
// DIVIDENDO y RETORNO suman. Cero para los demás tipos.
func (t *Transaccion) EfectoCaja() decimal.Decimal {
	monto := t.Cantidad.Mul(t.Precio)
	switch t.TipoContable {
	case TipoCargo:
		return monto.Neg()
	case TipoDividendo, TipoRetorno:
		return monto
	}
	return decimal.Zero
}
