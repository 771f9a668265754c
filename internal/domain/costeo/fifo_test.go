package costeo_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var grupoTest = entity.GrupoCosteo{
	EmpresaID:     "EMP-1",
	CustodioID:    "CUST-1",
	InstrumentoID: "INST-1",
	Cuenta:        "CTA-1",
}

func dia(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func tx(id string, d int, seq int64, tipo string, cantidad, precio float64) *entity.Transaccion {
	return &entity.Transaccion{
		ID:            id,
		EmpresaID:     grupoTest.EmpresaID,
		CustodioID:    grupoTest.CustodioID,
		InstrumentoID: grupoTest.InstrumentoID,
		Cuenta:        grupoTest.Cuenta,
		Fecha:         dia(d),
		Secuencia:     seq,
		TipoContable:  tipo,
		Cantidad:      decimal.NewFromFloat(cantidad),
		Precio:        decimal.NewFromFloat(precio),
		Moneda:        "CLP",
	}
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios del cruce FIFO
// ──────────────────────────────────────────────────────────────────────────────

// Escenario base: INGRESO 100 @ $10 (día 1) y EGRESO 60 @ $15 (día 2).
// Debe emitirse un único detalle (lote L1, 60 unidades a costo 10), el saldo
// queda en 40 y la utilidad realizada es (15−10)×60 = 300.
func TestCostearGrupo_EscenarioBasico(t *testing.T) {
	txs := []*entity.Transaccion{
		tx("T1", 1, 1, entity.TipoIngreso, 100, 10),
		tx("T2", 2, 2, entity.TipoEgreso, 60, 15),
	}

	res, err := costeo.CostearGrupo(grupoTest, txs)
	require.NoError(t, err)

	require.Len(t, res.Detalles, 1)
	d := res.Detalles[0]
	assert.Equal(t, "T2", d.EgresoID)
	assert.Equal(t, "T1", d.IngresoID)
	assert.True(t, d.CantidadUsada.Equal(dec(60)), "cantidad usada: %s", d.CantidadUsada)
	assert.True(t, d.CostoUnitario.Equal(dec(10)), "costo unitario: %s", d.CostoUnitario)

	require.Len(t, res.Filas, 2)
	egreso := res.Filas[1]
	assert.True(t, egreso.SaldoCantidad.Equal(dec(40)), "saldo: %s", egreso.SaldoCantidad)
	assert.True(t, egreso.SaldoValor.Equal(dec(400)), "saldo valor: %s", egreso.SaldoValor)
	assert.True(t, egreso.CostoAsignado.Equal(dec(600)))
	assert.True(t, egreso.Margen.Equal(dec(5)))
	assert.True(t, egreso.UtilidadRealizada.Equal(dec(300)), "utilidad: %s", egreso.UtilidadRealizada)
	assert.Empty(t, res.Pendientes)
}

// Continuación del escenario base: EGRESO de 50 el día 3 con solo 40 en
// inventario. Cruce parcial de 40, faltante de 10 como pendiente y saldo 0.
func TestCostearGrupo_SaldoInsuficiente(t *testing.T) {
	txs := []*entity.Transaccion{
		tx("T1", 1, 1, entity.TipoIngreso, 100, 10),
		tx("T2", 2, 2, entity.TipoEgreso, 60, 15),
		tx("T3", 3, 3, entity.TipoEgreso, 50, 15),
	}

	res, err := costeo.CostearGrupo(grupoTest, txs)
	require.NoError(t, err, "el faltante no debe abortar la corrida")

	require.Len(t, res.Pendientes, 1)
	p := res.Pendientes[0]
	assert.Equal(t, "T3", p.EgresoID)
	assert.True(t, p.CantidadFaltante.Equal(dec(10)), "faltante: %s", p.CantidadFaltante)

	require.Len(t, res.Filas, 3)
	ultima := res.Filas[2]
	assert.True(t, ultima.SaldoCantidad.IsZero(), "saldo final: %s", ultima.SaldoCantidad)
	assert.True(t, ultima.CantidadCruzada.Equal(dec(40)))
	// El faltante queda fuera de la utilidad realizada.
	assert.True(t, ultima.UtilidadRealizada.Equal(dec(200)), "utilidad: %s", ultima.UtilidadRealizada)
}

// El matcher señala el faltante con un error tipado que incluye grupo,
// cantidad requerida y disponible.
func TestMatcher_SenalaSaldoInsuficiente(t *testing.T) {
	m := costeo.NewMatcher(grupoTest)
	require.NoError(t, m.Procesar(tx("T1", 1, 1, entity.TipoIngreso, 40, 10)))

	err := m.Procesar(tx("T2", 2, 2, entity.TipoEgreso, 50, 15))
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrSaldoInsuficiente)

	var insuf *domain.SaldoInsuficienteError
	require.True(t, errors.As(err, &insuf))
	assert.Equal(t, grupoTest, insuf.Grupo)
	assert.True(t, insuf.Requerida.Equal(dec(50)))
	assert.True(t, insuf.Disponible.Equal(dec(40)))
}

// Lote más antiguo primero: con A (caro) creado antes que B (barato), un
// egreso debe agotar A antes de tocar B, sin importar el orden de precios.
func TestMatcher_LoteMasAntiguoPrimero(t *testing.T) {
	m := costeo.NewMatcher(grupoTest)
	require.NoError(t, m.Procesar(tx("A", 1, 1, entity.TipoIngreso, 30, 50)))
	require.NoError(t, m.Procesar(tx("B", 1, 2, entity.TipoIngreso, 30, 5)))

	require.NoError(t, m.Procesar(tx("V1", 2, 3, entity.TipoEgreso, 40, 60)))

	detalles := m.Detalles()
	require.Len(t, detalles, 2)
	assert.Equal(t, "A", detalles[0].IngresoID, "primero el lote más antiguo")
	assert.True(t, detalles[0].CantidadUsada.Equal(dec(30)), "A debe agotarse completo")
	assert.Equal(t, "B", detalles[1].IngresoID)
	assert.True(t, detalles[1].CantidadUsada.Equal(dec(10)))

	// A queda retirado pero direccionable, con restante cero.
	lotes := m.Ledger().Lotes()
	require.Len(t, lotes, 2)
	assert.True(t, lotes[0].Agotado())
	assert.True(t, lotes[0].CantidadRestante.IsZero())
	assert.True(t, lotes[1].CantidadRestante.Equal(dec(20)))
}

// Propiedad: la suma de CantidadUsada sobre un lote nunca excede su cantidad
// original, y un egreso cruzado por completo suma exactamente su cantidad.
func TestMatcher_InvariantesDeCruce(t *testing.T) {
	m := costeo.NewMatcher(grupoTest)
	require.NoError(t, m.Procesar(tx("L1", 1, 1, entity.TipoIngreso, 25, 10)))
	require.NoError(t, m.Procesar(tx("L2", 2, 2, entity.TipoIngreso, 25, 12)))
	require.NoError(t, m.Procesar(tx("L3", 3, 3, entity.TipoIngreso, 25, 14)))

	egresos := []*entity.Transaccion{
		tx("E1", 4, 4, entity.TipoEgreso, 10, 20),
		tx("E2", 5, 5, entity.TipoEgreso, 30, 20),
		tx("E3", 6, 6, entity.TipoEgreso, 20, 20),
	}
	for _, e := range egresos {
		require.NoError(t, m.Procesar(e))
	}

	usadoPorLote := map[string]decimal.Decimal{}
	usadoPorEgreso := map[string]decimal.Decimal{}
	for _, d := range m.Detalles() {
		usadoPorLote[d.IngresoID] = usadoPorLote[d.IngresoID].Add(d.CantidadUsada)
		usadoPorEgreso[d.EgresoID] = usadoPorEgreso[d.EgresoID].Add(d.CantidadUsada)
	}
	for _, lote := range m.Ledger().Lotes() {
		assert.True(t, usadoPorLote[lote.ID].LessThanOrEqual(lote.CantidadOriginal),
			"lote %s sobreconsumido: %s", lote.ID, usadoPorLote[lote.ID])
	}
	for _, e := range egresos {
		assert.True(t, usadoPorEgreso[e.ID].Equal(e.Cantidad),
			"egreso %s cruzado %s de %s", e.ID, usadoPorEgreso[e.ID], e.Cantidad)
	}
}

// Cada detalle sale del matcher con un ID propio, no vacío y distinto del
// resto: los detalles se persisten con el ID como clave primaria y un egreso
// que cruza varios lotes emite varios detalles en la misma corrida.
func TestMatcher_DetallesConIDUnico(t *testing.T) {
	m := costeo.NewMatcher(grupoTest)
	require.NoError(t, m.Procesar(tx("L1", 1, 1, entity.TipoIngreso, 30, 10)))
	require.NoError(t, m.Procesar(tx("L2", 1, 2, entity.TipoIngreso, 30, 12)))
	require.NoError(t, m.Procesar(tx("E1", 2, 3, entity.TipoEgreso, 40, 20)))

	detalles := m.Detalles()
	require.Len(t, detalles, 2)

	vistos := map[string]bool{}
	for _, d := range detalles {
		require.NotEmpty(t, d.ID, "detalle %s/%s sin ID", d.EgresoID, d.IngresoID)
		assert.False(t, vistos[d.ID], "ID repetido entre detalles: %s", d.ID)
		vistos[d.ID] = true
	}
}

// Un ingreso con cantidad no positiva es corrupción de datos: invariante.
func TestMatcher_IngresoCantidadNoPositiva(t *testing.T) {
	m := costeo.NewMatcher(grupoTest)
	err := m.Procesar(tx("T1", 1, 1, entity.TipoIngreso, 0, 10))
	require.ErrorIs(t, err, domain.ErrInvarianteViolada)
}

// Los ajustes aceptados reentran al cruce: un AJUSTE_INGRESO abre lote y un
// egreso posterior puede consumirlo.
func TestMatcher_AjusteIngresoAbreLote(t *testing.T) {
	m := costeo.NewMatcher(grupoTest)
	require.NoError(t, m.Procesar(tx("AJ1", 1, 1, entity.TipoAjusteIngreso, 45, 0)))
	require.NoError(t, m.Procesar(tx("E1", 2, 2, entity.TipoEgreso, 45, 10)))
	assert.True(t, m.Ledger().Disponible().IsZero())
	assert.Empty(t, m.Pendientes())
}
