package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/costeo"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// KardexHandler maneja las consultas de kardex (protegido).
type KardexHandler struct {
	uc       *costeo.UseCase
	detalles repository.DetalleCosteoRepository
	pdf      costeo.KardexPDFGenerator
}

// NewKardexHandler construye el handler.
func NewKardexHandler(uc *costeo.UseCase, detalles repository.DetalleCosteoRepository, pdf costeo.KardexPDFGenerator) *KardexHandler {
	return &KardexHandler{uc: uc, detalles: detalles, pdf: pdf}
}

// grupoFromQuery arma la clave de grupo desde los query params.
func grupoFromQuery(c *fiber.Ctx) dto.GrupoRequest {
	return dto.GrupoRequest{
		EmpresaID:     c.Query("empresa_id"),
		CustodioID:    c.Query("custodio_id"),
		InstrumentoID: c.Query("instrumento_id"),
		Cuenta:        c.Query("cuenta"),
	}
}

// List godoc
// @Summary      Kardex vigente de un grupo
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        empresa_id      query  string  true   "Empresa"
// @Param        custodio_id     query  string  true   "Custodio"
// @Param        instrumento_id  query  string  true   "Instrumento"
// @Param        cuenta          query  string  true   "Cuenta"
// @Param        limit           query  int     false  "Máximo de filas (default 100)"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex [get]
func (h *KardexHandler) List(c *fiber.Ctx) error {
	grupo := grupoFromQuery(c).Grupo()
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	filas, err := h.uc.GetKardex(c.Context(), grupo)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo incompleta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	total := len(filas)
	desde := page.Offset
	if desde > total {
		desde = total
	}
	hasta := desde + page.Limit
	if hasta > total {
		hasta = total
	}
	out := make([]dto.KardexRowResponse, 0, hasta-desde)
	for _, f := range filas[desde:hasta] {
		out = append(out, dto.ToKardexRowResponse(f))
	}
	return c.JSON(fiber.Map{"total": total, "filas": out})
}

// Saldo godoc
// @Summary      Saldo actual (cantidad) de un grupo
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        empresa_id      query  string  true  "Empresa"
// @Param        custodio_id     query  string  true  "Custodio"
// @Param        instrumento_id  query  string  true  "Instrumento"
// @Param        cuenta          query  string  true  "Cuenta"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/saldo [get]
func (h *KardexHandler) Saldo(c *fiber.Ctx) error {
	grupo := grupoFromQuery(c).Grupo()
	saldo, err := h.uc.SaldoActual(c.Context(), grupo)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo incompleta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"grupo": grupo.String(), "saldo_cantidad": saldo.String()})
}

// Pendientes godoc
// @Summary      Egresos con faltante de inventario de un grupo
// @Tags         kardex
// @Security     Bearer
// @Produce      json
// @Param        empresa_id      query  string  true  "Empresa"
// @Param        custodio_id     query  string  true  "Custodio"
// @Param        instrumento_id  query  string  true  "Instrumento"
// @Param        cuenta          query  string  true  "Cuenta"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/pendientes [get]
func (h *KardexHandler) Pendientes(c *fiber.Ctx) error {
	grupo := grupoFromQuery(c).Grupo()
	if !grupo.Valida() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo incompleta"})
	}
	pendientes, err := h.detalles.ListarPendientes(c.Context(), grupo)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	type pendienteDTO struct {
		EgresoID         string `json:"egreso_id"`
		Fecha            string `json:"fecha"`
		CantidadFaltante string `json:"cantidad_faltante"`
	}
	out := make([]pendienteDTO, 0, len(pendientes))
	for _, p := range pendientes {
		out = append(out, pendienteDTO{
			EgresoID:         p.EgresoID,
			Fecha:            p.Fecha.Format("2006-01-02"),
			CantidadFaltante: p.CantidadFaltante.String(),
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "pendientes": out})
}

// PDF godoc
// @Summary      Reporte PDF del kardex de un grupo
// @Tags         kardex
// @Security     Bearer
// @Produce      application/pdf
// @Param        empresa_id      query  string  true  "Empresa"
// @Param        custodio_id     query  string  true  "Custodio"
// @Param        instrumento_id  query  string  true  "Instrumento"
// @Param        cuenta          query  string  true  "Cuenta"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kardex/pdf [get]
func (h *KardexHandler) PDF(c *fiber.Ctx) error {
	grupo := grupoFromQuery(c).Grupo()
	filas, err := h.uc.GetKardex(c.Context(), grupo)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo incompleta"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	bytes, err := h.pdf.GenerateKardexPDF(c.Context(), grupo, filas)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "kardex_"+grupo.InstrumentoID+".pdf"))
	return c.Send(bytes)
}
