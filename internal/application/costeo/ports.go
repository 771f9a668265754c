package costeo

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la visibilidad todo-o-nada del
// pipeline de un grupo: kardex, detalles y marcas de procesamiento se
// confirman juntos o no se confirma nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		txRepo repository.TransaccionRepository,
		kardexRepo repository.KardexRepository,
		detalleRepo repository.DetalleCosteoRepository,
	) error) error
}

// KardexPDFGenerator genera el reporte PDF del kardex de un grupo.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, grupo entity.GrupoCosteo, filas []*entity.KardexRow) ([]byte, error)
}
