package costeo_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/domain/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

var tolTest = costeo.Tolerancia{
	Cantidad: decimal.NewFromFloat(0.0001),
	Valor:    decimal.NewFromFloat(0.01),
}

func filaConSaldo(cantidad, valor float64) *entity.KardexRow {
	return &entity.KardexRow{
		Grupo:         grupoTest,
		SaldoCantidad: dec(cantidad),
		SaldoValor:    dec(valor),
	}
}

func saldoCustodio(d int, cantidad, valor float64) *entity.SaldoCustodio {
	return &entity.SaldoCustodio{
		Grupo:    grupoTest,
		Fecha:    dia(d),
		Cantidad: dec(cantidad),
		Valor:    dec(valor),
	}
}

// Simetría: con igualdad exacta el resultado es EXITO y sin ajustes.
func TestConciliar_IgualdadExacta(t *testing.T) {
	res := costeo.Conciliar(grupoTest, dia(3), filaConSaldo(40, 400), saldoCustodio(3, 40, 400), tolTest)
	assert.Equal(t, entity.EstadoExito, res.Estado)
	assert.Empty(t, res.Ajustes)
}

// Diferencia exactamente en el borde de la tolerancia: sigue siendo EXITO.
func TestConciliar_BordeDeTolerancia(t *testing.T) {
	res := costeo.Conciliar(grupoTest, dia(3), filaConSaldo(40, 400), saldoCustodio(3, 40.0001, 400.01), tolTest)
	assert.Equal(t, entity.EstadoExito, res.Estado)
	assert.Empty(t, res.Ajustes)
}

// Escenario del faltante: el custodio reporta 45 donde el kardex quedó en 0.
// Debe proponerse un AJUSTE_INGRESO de 45 con estado EXITO_CON_AJUSTE.
func TestConciliar_CustodioReportaMas(t *testing.T) {
	res := costeo.Conciliar(grupoTest, dia(3), filaConSaldo(0, 0), saldoCustodio(3, 45, 450), tolTest)

	require.Equal(t, entity.EstadoExitoConAjuste, res.Estado)
	require.Len(t, res.Ajustes, 1)
	aj := res.Ajustes[0]
	assert.Equal(t, entity.AjusteIngreso, aj.Tipo)
	assert.True(t, aj.Cantidad.Equal(dec(45)), "cantidad del ajuste: %s", aj.Cantidad)
	assert.Equal(t, dia(3), aj.FechaEfectiva)
	assert.Equal(t, grupoTest, aj.Grupo)
}

// El custodio reporta menos que el kardex: ajuste de EGRESO por la diferencia.
func TestConciliar_CustodioReportaMenos(t *testing.T) {
	res := costeo.Conciliar(grupoTest, dia(5), filaConSaldo(100, 1000), saldoCustodio(5, 90, 900), tolTest)

	require.Equal(t, entity.EstadoExitoConAjuste, res.Estado)
	require.Len(t, res.Ajustes, 1)
	assert.Equal(t, entity.AjusteEgreso, res.Ajustes[0].Tipo)
	assert.True(t, res.Ajustes[0].Cantidad.Equal(dec(10)))
}

// Sin saldo informado la comparación no puede completarse: FALLO sin ajustes.
func TestConciliar_SinSaldoCustodio(t *testing.T) {
	res := costeo.Conciliar(grupoTest, dia(3), filaConSaldo(40, 400), nil, tolTest)
	assert.Equal(t, entity.EstadoFallo, res.Estado)
	assert.NotEmpty(t, res.Mensaje)
	assert.Empty(t, res.Ajustes)
}

// Sin historia de kardex tampoco: FALLO descriptivo.
func TestConciliar_SinHistoriaKardex(t *testing.T) {
	res := costeo.Conciliar(grupoTest, dia(3), nil, saldoCustodio(3, 45, 450), tolTest)
	assert.Equal(t, entity.EstadoFallo, res.Estado)
	assert.Empty(t, res.Ajustes)
}

// Cantidad cuadrada con valor descuadrado: ningún ajuste de cantidad lo
// corrige, va a revisión manual.
func TestConciliar_SoloValorDescuadrado(t *testing.T) {
	res := costeo.Conciliar(grupoTest, dia(3), filaConSaldo(40, 400), saldoCustodio(3, 40, 480), tolTest)
	assert.Equal(t, entity.EstadoFallo, res.Estado)
	assert.Empty(t, res.Ajustes)
	assert.Contains(t, res.Mensaje, "revisión manual")
}
