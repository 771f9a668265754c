package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/auth"
	"github.com/jhoicas/Kardex-api/internal/application/conciliacion"
	"github.com/jhoicas/Kardex-api/internal/application/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CosteoUC       *costeo.UseCase
	ConciliacionUC *conciliacion.UseCase
	AuthUC         *auth.AuthUseCase
	DetalleRepo    repository.DetalleCosteoRepository
	PDFGenerator   costeo.KardexPDFGenerator
	JWTSecret      string
}

// Router registra las rutas de la API. Las consultas de kardex admiten
// cualquier rol autenticado; las corridas, resets y ajustes quedan
// restringidos a admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Corridas de costeo (solo admin)
	costeoGroup := protected.Group("/costeo", RequireRole(entity.RoleAdmin))
	costeoHandler := NewCosteoHandler(deps.CosteoUC)
	costeoGroup.Post("/procesar", costeoHandler.ProcesarCosteo)
	costeoGroup.Post("/grupo", costeoHandler.ProcesarGrupo)
	costeoGroup.Post("/reset", costeoHandler.Reset)

	// Consultas de kardex (admin y analista)
	kardexGroup := protected.Group("/kardex", RequireRole(entity.RoleAdmin, entity.RoleAnalista))
	kardexHandler := NewKardexHandler(deps.CosteoUC, deps.DetalleRepo, deps.PDFGenerator)
	kardexGroup.Get("/", kardexHandler.List)
	kardexGroup.Get("/saldo", kardexHandler.Saldo)
	kardexGroup.Get("/pendientes", kardexHandler.Pendientes)
	kardexGroup.Get("/pdf", kardexHandler.PDF)

	// Conciliación: consultar propone, aceptar muta (aceptar solo admin)
	concGroup := protected.Group("/conciliacion", RequireRole(entity.RoleAdmin, entity.RoleAnalista))
	concHandler := NewConciliacionHandler(deps.ConciliacionUC)
	concGroup.Post("/", concHandler.Conciliar)
	concGroup.Post("/ajustes", concHandler.CalcularAjustes)
	concGroup.Post("/ajustes/aceptar", RequireRole(entity.RoleAdmin), concHandler.AceptarAjuste)
}
