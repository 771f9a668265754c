package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// KardexRow es una fila del kardex: una por transacción procesada del grupo,
// ordenada por (fecha, secuencia), con el saldo corrido después del
// movimiento. Las filas nunca se editan: un recálculo las reemplaza.
type KardexRow struct {
	ID            string
	Grupo         GrupoCosteo
	TransaccionID string
	Fecha         time.Time
	Secuencia     int64
	TipoContable  string
	Cantidad      decimal.Decimal
	Precio        decimal.Decimal

	SaldoCantidad decimal.Decimal
	SaldoValor    decimal.Decimal
	CostoUnitario decimal.Decimal // SaldoValor / SaldoCantidad; cero con saldo cero

	// Solo para filas de egreso.
	CantidadCruzada   decimal.Decimal
	CostoAsignado     decimal.Decimal // Σ(cantidadUsada × costoUnitario del lote)
	Margen            decimal.Decimal // precio de venta − costo unitario promedio del cruce
	UtilidadRealizada decimal.Decimal
}
