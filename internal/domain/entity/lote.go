package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lote es una cantidad discreta de inventario creada por un INGRESO y
// consumida FIFO por egresos posteriores. Vive solo dentro de una corrida
// de costeo: el motor es dueño exclusivo de su ciclo de vida.
// Un lote agotado (restante cero) se retira de la cabeza activa de la cola
// pero permanece direccionable para auditoría; su id nunca se reutiliza.
type Lote struct {
	ID                  string
	TransaccionOrigenID string
	FechaCompra         time.Time
	Secuencia           int64
	CantidadOriginal    decimal.Decimal
	CantidadRestante    decimal.Decimal
	CostoUnitario       decimal.Decimal
}

// Agotado indica si el lote ya no tiene cantidad restante.
func (l *Lote) Agotado() bool {
	return !l.CantidadRestante.IsPositive()
}
