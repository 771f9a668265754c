package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrSaldoInsuficiente = errors.New("saldo insuficiente para costear el egreso")
	ErrInvarianteViolada = errors.New("invariante de costeo violada")
)

// SaldoInsuficienteError: un egreso requiere más cantidad de la que tienen
// los lotes abiertos. El cruce queda registrado parcialmente y el faltante
// se reporta; no es fatal para el batch, pero el grupo queda marcado para
// conciliación manual.
type SaldoInsuficienteError struct {
	Grupo      entity.GrupoCosteo
	EgresoID   string
	Requerida  decimal.Decimal
	Disponible decimal.Decimal
}

func (e *SaldoInsuficienteError) Error() string {
	return fmt.Sprintf("saldo insuficiente en grupo %s (egreso %s): requerida %s, disponible %s",
		e.Grupo, e.EgresoID, e.Requerida, e.Disponible)
}

// Unwrap permite errors.Is(err, ErrSaldoInsuficiente).
func (e *SaldoInsuficienteError) Unwrap() error { return ErrSaldoInsuficiente }

// InvarianteError indica un defecto de programación o corrupción de datos
// (lote con restante negativo, cruce que excede el lote). Aborta el pipeline
// del grupo afectado; los grupos ya confirmados no se tocan.
type InvarianteError struct {
	Grupo   entity.GrupoCosteo
	Detalle string
}

func (e *InvarianteError) Error() string {
	return fmt.Sprintf("invariante violada en grupo %s: %s", e.Grupo, e.Detalle)
}

// Unwrap permite errors.Is(err, ErrInvarianteViolada).
func (e *InvarianteError) Unwrap() error { return ErrInvarianteViolada }
