package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una corrida de conciliación.
const (
	EstadoExito          = "EXITO"
	EstadoExitoConAjuste = "EXITO_CON_AJUSTE"
	EstadoFallo          = "FALLO"
)

// Tipos de ajuste propuesto.
const (
	AjusteIngreso = "INGRESO"
	AjusteEgreso  = "EGRESO"
)

// SaldoCustodio es el saldo informado por el custodio para un grupo a una
// fecha. Lo provee la capa de carga de cartolas; el motor solo lo lee.
type SaldoCustodio struct {
	Grupo    GrupoCosteo
	Fecha    time.Time
	Cantidad decimal.Decimal
	Valor    decimal.Decimal
}

// AjustePropuesto es la corrección que la conciliación propone cuando el
// saldo del kardex difiere del saldo del custodio más allá de la tolerancia.
// Al aceptarse se convierte en una transacción AJUSTE_INGRESO/AJUSTE_EGRESO
// que reentra al cruce en la siguiente corrida.
type AjustePropuesto struct {
	Grupo          GrupoCosteo
	Tipo           string // AjusteIngreso | AjusteEgreso
	Cantidad       decimal.Decimal
	FechaEfectiva  time.Time
	Motivo         string
}

// ResultadoConciliacion es el resultado de una corrida de conciliación para
// un grupo. Transitorio: no se persiste.
type ResultadoConciliacion struct {
	Grupo   GrupoCosteo
	Estado  string
	Mensaje string
	Ajustes []AjustePropuesto
}
