package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/conciliacion"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ConciliacionHandler maneja conciliaciones y ajustes (protegido).
type ConciliacionHandler struct {
	uc *conciliacion.UseCase
}

// NewConciliacionHandler construye el handler.
func NewConciliacionHandler(uc *conciliacion.UseCase) *ConciliacionHandler {
	return &ConciliacionHandler{uc: uc}
}

// Conciliar godoc
// @Summary      Conciliar el kardex de un grupo contra el saldo del custodio
// @Tags         conciliacion
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConciliarRequest  true  "clave del grupo + fecha"
// @Success      200   {object}  dto.ConciliacionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/conciliacion [post]
func (h *ConciliacionHandler) Conciliar(c *fiber.Ctx) error {
	var in dto.ConciliarRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	fecha, err := parseFecha(in.Fecha)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida (YYYY-MM-DD)"})
	}
	res, err := h.uc.Conciliar(c.Context(), in.Grupo(), fecha)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo incompleta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toConciliacionResponse(res))
}

// CalcularAjustes godoc
// @Summary      Ajustes propuestos por la conciliación a una fecha
// @Tags         conciliacion
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConciliarRequest  true  "clave del grupo + fecha + tipo opcional (INGRESO|EGRESO)"
// @Success      200   {array}   dto.AjusteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/conciliacion/ajustes [post]
func (h *ConciliacionHandler) CalcularAjustes(c *fiber.Ctx) error {
	var in dto.ConciliarRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	fecha, err := parseFecha(in.Fecha)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida (YYYY-MM-DD)"})
	}
	ajustes, err := h.uc.CalcularAjustes(c.Context(), in.Grupo(), fecha, in.Tipo)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo incompleta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.AjusteResponse, 0, len(ajustes))
	for _, a := range ajustes {
		out = append(out, toAjusteResponse(a))
	}
	return c.JSON(out)
}

// AceptarAjuste godoc
// @Summary      Aceptar un ajuste propuesto
// @Description  Convierte el ajuste en una transacción AJUSTE_INGRESO/AJUSTE_EGRESO
// sin procesar que reentra al costeo en la siguiente corrida.
// @Tags         conciliacion
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AceptarAjusteRequest  true  "clave del grupo + tipo + cantidad + fecha_efectiva"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/conciliacion/ajustes/aceptar [post]
func (h *ConciliacionHandler) AceptarAjuste(c *fiber.Ctx) error {
	var in dto.AceptarAjusteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	fecha, err := parseFecha(in.FechaEfectiva)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha_efectiva inválida (YYYY-MM-DD)"})
	}
	tx, err := h.uc.AceptarAjuste(c.Context(), entity.AjustePropuesto{
		Grupo:         in.Grupo(),
		Tipo:          in.Tipo,
		Cantidad:      in.Cantidad,
		FechaEfectiva: fecha,
		Motivo:        in.Motivo,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ajuste inválido"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el ajuste ya fue aceptado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaccion_id": tx.ID,
		"tipo_contable":  tx.TipoContable,
	})
}

func toAjusteResponse(a entity.AjustePropuesto) dto.AjusteResponse {
	return dto.AjusteResponse{
		Tipo:          a.Tipo,
		Cantidad:      a.Cantidad,
		FechaEfectiva: a.FechaEfectiva,
		Motivo:        a.Motivo,
	}
}

func toConciliacionResponse(res entity.ResultadoConciliacion) dto.ConciliacionResponse {
	out := dto.ConciliacionResponse{Estado: res.Estado, Mensaje: res.Mensaje}
	for _, a := range res.Ajustes {
		out.Ajustes = append(out.Ajustes, toAjusteResponse(a))
	}
	return out
}
