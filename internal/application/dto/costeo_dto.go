package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// GrupoRequest identifica el grupo de costeo en requests HTTP (body o query).
type GrupoRequest struct {
	EmpresaID     string `json:"empresa_id" query:"empresa_id" validate:"required"`
	CustodioID    string `json:"custodio_id" query:"custodio_id" validate:"required"`
	InstrumentoID string `json:"instrumento_id" query:"instrumento_id" validate:"required"`
	Cuenta        string `json:"cuenta" query:"cuenta" validate:"required"`
}

// Grupo convierte el request a la clave de dominio.
func (g GrupoRequest) Grupo() entity.GrupoCosteo {
	return entity.GrupoCosteo{
		EmpresaID:     g.EmpresaID,
		CustodioID:    g.CustodioID,
		InstrumentoID: g.InstrumentoID,
		Cuenta:        g.Cuenta,
	}
}

// ProcesarCosteoRequest entrada para correr el costeo del batch completo.
type ProcesarCosteoRequest struct {
	FechaCorte string `json:"fecha_corte" validate:"required"` // YYYY-MM-DD
}

// ProcesarGrupoRequest entrada para costear un solo grupo.
type ProcesarGrupoRequest struct {
	GrupoRequest
	FechaCorte string `json:"fecha_corte" validate:"required"`
}

// ResetRequest entrada para invalidar el kardex desde una fecha.
// Sin grupo aplica a todos los grupos.
type ResetRequest struct {
	Grupo *GrupoRequest `json:"grupo"`
	Desde string        `json:"desde" validate:"required"` // YYYY-MM-DD
}

// ConciliarRequest entrada para conciliar un grupo a una fecha.
type ConciliarRequest struct {
	GrupoRequest
	Fecha string `json:"fecha" validate:"required"` // YYYY-MM-DD
	Tipo  string `json:"tipo" validate:"omitempty,oneof=INGRESO EGRESO"`
}

// AceptarAjusteRequest entrada para aceptar un ajuste propuesto.
type AceptarAjusteRequest struct {
	GrupoRequest
	Tipo          string          `json:"tipo" validate:"required,oneof=INGRESO EGRESO"`
	Cantidad      decimal.Decimal `json:"cantidad" validate:"required"`
	FechaEfectiva string          `json:"fecha_efectiva" validate:"required"` // YYYY-MM-DD
	Motivo        string          `json:"motivo"`
}

// KardexRowResponse fila de kardex para la API.
type KardexRowResponse struct {
	TransaccionID     string          `json:"transaccion_id"`
	Fecha             time.Time       `json:"fecha"`
	Secuencia         int64           `json:"secuencia"`
	TipoContable      string          `json:"tipo_contable"`
	Cantidad          decimal.Decimal `json:"cantidad"`
	Precio            decimal.Decimal `json:"precio"`
	SaldoCantidad     decimal.Decimal `json:"saldo_cantidad"`
	SaldoValor        decimal.Decimal `json:"saldo_valor"`
	CostoUnitario     decimal.Decimal `json:"costo_unitario"`
	CantidadCruzada   decimal.Decimal `json:"cantidad_cruzada"`
	CostoAsignado     decimal.Decimal `json:"costo_asignado"`
	Margen            decimal.Decimal `json:"margen"`
	UtilidadRealizada decimal.Decimal `json:"utilidad_realizada"`
}

// ToKardexRowResponse mapea la entidad a la respuesta.
func ToKardexRowResponse(f *entity.KardexRow) KardexRowResponse {
	return KardexRowResponse{
		TransaccionID:     f.TransaccionID,
		Fecha:             f.Fecha,
		Secuencia:         f.Secuencia,
		TipoContable:      f.TipoContable,
		Cantidad:          f.Cantidad,
		Precio:            f.Precio,
		SaldoCantidad:     f.SaldoCantidad,
		SaldoValor:        f.SaldoValor,
		CostoUnitario:     f.CostoUnitario,
		CantidadCruzada:   f.CantidadCruzada,
		CostoAsignado:     f.CostoAsignado,
		Margen:            f.Margen,
		UtilidadRealizada: f.UtilidadRealizada,
	}
}

// ResultadoBatchResponse resumen de una corrida de costeo.
type ResultadoBatchResponse struct {
	Corte                  time.Time         `json:"corte"`
	Procesados             int               `json:"procesados"`
	Fallidos               int               `json:"fallidos"`
	PendientesConciliacion []string          `json:"pendientes_conciliacion,omitempty"`
	Errores                map[string]string `json:"errores,omitempty"`
}

// AjusteResponse ajuste propuesto para la API.
type AjusteResponse struct {
	Tipo          string          `json:"tipo"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	FechaEfectiva time.Time       `json:"fecha_efectiva"`
	Motivo        string          `json:"motivo"`
}

// ConciliacionResponse resultado de una conciliación.
type ConciliacionResponse struct {
	Estado  string           `json:"estado"`
	Mensaje string           `json:"mensaje"`
	Ajustes []AjusteResponse `json:"ajustes,omitempty"`
}
