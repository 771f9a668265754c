// Package pdf implementa la generación del reporte Kardex de un grupo de
// costeo usando Maroto v2.
//
// Layout de la página A4 apaisada:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│  HEADER: Kardex + clave del grupo  │  fecha de emisión           │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Cant | Precio | Saldo | C.Unit | Utilidad │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  RESUMEN: saldo final / utilidad acumulada                       │
//	└──────────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appcosteo "github.com/jhoicas/Kardex-api/internal/application/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// Ensure MarotoPDFGenerator implements costeo.KardexPDFGenerator.
var _ appcosteo.KardexPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa costeo.KardexPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateKardexPDF genera el PDF del kardex del grupo y devuelve sus bytes.
// Las filas vienen ordenadas por (fecha, secuencia), igual que en la tabla.
func (g *MarotoPDFGenerator) GenerateKardexPDF(
	_ context.Context,
	grupo entity.GrupoCosteo,
	filas []*entity.KardexRow,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+grupo.String(), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(grupo))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, f := range filas {
		m.AddRows(kardexRow(f))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(resumenRow(filas))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + clave del grupo (izq) y fecha de emisión (der).
func headerRow(grupo entity.GrupoCosteo) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("KARDEX FIFO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Empresa %s  |  Custodio %s  |  Instrumento %s  |  Cuenta %s",
				grupo.EmpresaID, grupo.CustodioID, grupo.InstrumentoID, grupo.Cuenta,
			), props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Emitido: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla del kardex.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 1, align.Left),
		h("Tipo", 2, align.Left),
		h("Cantidad", 1, align.Right),
		h("Precio", 1, align.Right),
		h("Cruzada", 1, align.Right),
		h("Saldo Cant.", 2, align.Right),
		h("Costo Unit.", 1, align.Right),
		h("Saldo Valor", 2, align.Right),
		h("Utilidad", 1, align.Right),
	)
}

// kardexRow: una fila por movimiento. La utilidad negativa va en rojo.
func kardexRow(f *entity.KardexRow) core.Row {
	num := func(d decimal.Decimal, size int) core.Col {
		return col.New(size).Add(text.New(
			d.StringFixed(2),
			props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1},
		))
	}
	utilidadColor := colorGray
	if f.UtilidadRealizada.IsNegative() {
		utilidadColor = colorRed
	}
	return row.New(6).Add(
		col.New(1).Add(text.New(
			f.Fecha.Format("02/01/2006"),
			props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(2).Add(text.New(
			f.TipoContable,
			props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
		)),
		num(f.Cantidad, 1),
		num(f.Precio, 1),
		num(f.CantidadCruzada, 1),
		num(f.SaldoCantidad, 2),
		num(f.CostoUnitario, 1),
		num(f.SaldoValor, 2),
		col.New(1).Add(text.New(
			f.UtilidadRealizada.StringFixed(2),
			props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1, Color: utilidadColor},
		)),
	)
}

// resumenRow: saldo final y utilidad realizada acumulada.
func resumenRow(filas []*entity.KardexRow) core.Row {
	saldoCantidad, saldoValor := decimal.Zero, decimal.Zero
	utilidad := decimal.Zero
	for _, f := range filas {
		utilidad = utilidad.Add(f.UtilidadRealizada)
	}
	if len(filas) > 0 {
		ultima := filas[len(filas)-1]
		saldoCantidad, saldoValor = ultima.SaldoCantidad, ultima.SaldoValor
	}

	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Color: colorPrimary,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(
			label("Saldo final (cantidad / valor):"),
			label("Utilidad realizada acumulada:"),
		),
		col.New(3).Add(
			value(saldoCantidad.StringFixed(2)+" / "+saldoValor.StringFixed(2)),
			value(utilidad.StringFixed(2)),
		),
	)
}
