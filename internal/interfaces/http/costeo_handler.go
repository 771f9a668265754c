package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/costeo"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// CosteoHandler maneja las corridas de costeo (protegido).
type CosteoHandler struct {
	uc *costeo.UseCase
}

// NewCosteoHandler construye el handler.
func NewCosteoHandler(uc *costeo.UseCase) *CosteoHandler {
	return &CosteoHandler{uc: uc}
}

// parseFecha interpreta fechas YYYY-MM-DD de los requests.
func parseFecha(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ProcesarCosteo godoc
// @Summary      Correr el costeo de todos los grupos pendientes
// @Tags         costeo
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcesarCosteoRequest  true  "fecha_corte (YYYY-MM-DD)"
// @Success      200   {object}  dto.ResultadoBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/costeo/procesar [post]
func (h *CosteoHandler) ProcesarCosteo(c *fiber.Ctx) error {
	var in dto.ProcesarCosteoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	corte, err := parseFecha(in.FechaCorte)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha_corte inválida (YYYY-MM-DD)"})
	}
	res, err := h.uc.ProcesarCosteo(c.Context(), corte)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toBatchResponse(res))
}

// ProcesarGrupo godoc
// @Summary      Correr el costeo de un solo grupo
// @Tags         costeo
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcesarGrupoRequest  true  "clave del grupo + fecha_corte"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/costeo/grupo [post]
func (h *CosteoHandler) ProcesarGrupo(c *fiber.Ctx) error {
	var in dto.ProcesarGrupoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	corte, err := parseFecha(in.FechaCorte)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha_corte inválida (YYYY-MM-DD)"})
	}
	res, err := h.uc.ProcesarGrupo(c.Context(), in.Grupo(), corte)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo incompleta"})
		}
		if errors.Is(err, domain.ErrInvarianteViolada) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVARIANTE", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{
		"grupo":      res.Grupo.String(),
		"filas":      res.Filas,
		"detalles":   res.Detalles,
		"pendientes": len(res.Pendientes),
	})
}

// Reset godoc
// @Summary      Invalidar el kardex desde una fecha (reset explícito)
// @Description  Borra filas de kardex y detalles desde la fecha y desmarca las
// transacciones para que la próxima corrida las regenere. Sin grupo aplica a todos.
// @Tags         costeo
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetRequest  true  "grupo (opcional) + desde (YYYY-MM-DD)"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/costeo/reset [post]
func (h *CosteoHandler) Reset(c *fiber.Ctx) error {
	var in dto.ResetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	desde, err := parseFecha(in.Desde)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde inválida (YYYY-MM-DD)"})
	}
	var grupo *entity.GrupoCosteo
	if in.Grupo != nil {
		g := in.Grupo.Grupo()
		grupo = &g
	}
	if err := h.uc.ResetDesde(c.Context(), grupo, desde); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo incompleta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "kardex invalidado, la próxima corrida lo regenera"})
}

func toBatchResponse(res *costeo.ResultadoBatch) dto.ResultadoBatchResponse {
	out := dto.ResultadoBatchResponse{
		Corte:      res.Corte,
		Procesados: res.Procesados,
		Fallidos:   res.Fallidos,
		Errores:    res.Errores,
	}
	for _, g := range res.PendientesConciliacion {
		out.PendientesConciliacion = append(out.PendientesConciliacion, g.String())
	}
	return out
}
