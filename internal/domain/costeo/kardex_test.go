package costeo_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/domain/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// Continuidad de saldos: cada fila arrastra el saldo de la anterior más el
// efecto con signo de su transacción.
func TestBuildKardex_ContinuidadDeSaldos(t *testing.T) {
	txs := []*entity.Transaccion{
		tx("T1", 1, 1, entity.TipoIngreso, 100, 10),
		tx("T2", 2, 2, entity.TipoIngreso, 50, 12),
		tx("T3", 3, 3, entity.TipoEgreso, 120, 15),
		tx("T4", 4, 4, entity.TipoIngreso, 10, 20),
	}

	res, err := costeo.CostearGrupo(grupoTest, txs)
	require.NoError(t, err)
	require.Len(t, res.Filas, 4)

	anterior := decimal.Zero
	for i, fila := range res.Filas {
		var efecto decimal.Decimal
		switch {
		case txs[i].EsIngreso():
			efecto = txs[i].Cantidad
		case txs[i].EsEgreso():
			efecto = fila.CantidadCruzada.Neg()
		}
		esperado := anterior.Add(efecto)
		assert.True(t, fila.SaldoCantidad.Equal(esperado),
			"fila %d: saldo %s, esperado %s", i, fila.SaldoCantidad, esperado)
		anterior = fila.SaldoCantidad
	}

	// El egreso de 120 cruza 100@10 + 20@12 = 1240.
	egreso := res.Filas[2]
	assert.True(t, egreso.CostoAsignado.Equal(dec(1240)), "costo asignado: %s", egreso.CostoAsignado)
	assert.True(t, egreso.SaldoCantidad.Equal(dec(30)))
	assert.True(t, egreso.SaldoValor.Equal(dec(360)), "30 restantes del lote a 12: %s", egreso.SaldoValor)
}

// NO_COSTEAR pasa al kardex como fila de auditoría sin mover saldos.
func TestBuildKardex_NoCostearEsPasivo(t *testing.T) {
	txs := []*entity.Transaccion{
		tx("T1", 1, 1, entity.TipoIngreso, 100, 10),
		tx("T2", 2, 2, entity.TipoNoCostear, 999, 99),
		tx("T3", 3, 3, entity.TipoEgreso, 40, 15),
	}

	res, err := costeo.CostearGrupo(grupoTest, txs)
	require.NoError(t, err)
	require.Len(t, res.Filas, 3, "la fila NO_COSTEAR debe existir para continuidad de auditoría")

	noCostear := res.Filas[1]
	assert.Equal(t, entity.TipoNoCostear, noCostear.TipoContable)
	assert.True(t, noCostear.SaldoCantidad.Equal(dec(100)), "saldo intacto: %s", noCostear.SaldoCantidad)
	assert.True(t, noCostear.SaldoValor.Equal(dec(1000)))
	require.Len(t, res.Detalles, 1)
	assert.Equal(t, "T3", res.Detalles[0].EgresoID, "NO_COSTEAR no participa del cruce")
}

// CARGO resta caja; DIVIDENDO y RETORNO suman. Ninguno toca la cola de lotes.
func TestBuildKardex_MovimientosDeCaja(t *testing.T) {
	txs := []*entity.Transaccion{
		tx("T1", 1, 1, entity.TipoIngreso, 100, 10),
		tx("T2", 2, 2, entity.TipoDividendo, 1, 50),
		tx("T3", 3, 3, entity.TipoCargo, 1, 30),
		tx("T4", 4, 4, entity.TipoRetorno, 1, 10),
	}

	res, err := costeo.CostearGrupo(grupoTest, txs)
	require.NoError(t, err)
	require.Len(t, res.Filas, 4)

	assert.True(t, res.Filas[1].SaldoValor.Equal(dec(1050)), "dividendo suma: %s", res.Filas[1].SaldoValor)
	assert.True(t, res.Filas[2].SaldoValor.Equal(dec(1020)), "cargo resta: %s", res.Filas[2].SaldoValor)
	assert.True(t, res.Filas[3].SaldoValor.Equal(dec(1030)), "retorno suma: %s", res.Filas[3].SaldoValor)
	for _, fila := range res.Filas[1:] {
		assert.True(t, fila.SaldoCantidad.Equal(dec(100)), "la cantidad nunca cambia por caja")
	}
	require.Len(t, res.Lotes, 1, "los movimientos de caja no abren lotes")
}

// Con saldo cero el costo unitario es cero por definición, no una división.
func TestBuildKardex_CostoUnitarioConSaldoCero(t *testing.T) {
	txs := []*entity.Transaccion{
		tx("T1", 1, 1, entity.TipoIngreso, 10, 10),
		tx("T2", 2, 2, entity.TipoEgreso, 10, 12),
	}

	res, err := costeo.CostearGrupo(grupoTest, txs)
	require.NoError(t, err)
	ultima := res.Filas[1]
	assert.True(t, ultima.SaldoCantidad.IsZero())
	assert.True(t, ultima.CostoUnitario.IsZero())
}

// Determinismo: costear dos veces la misma historia produce filas idénticas
// bit a bit (requisito para que reset + recorrida reemplace sin diferencias).
func TestCostearGrupo_Determinista(t *testing.T) {
	construir := func() []*entity.Transaccion {
		return []*entity.Transaccion{
			tx("T1", 1, 1, entity.TipoIngreso, 100, 10.5),
			tx("T2", 1, 2, entity.TipoIngreso, 33, 11.25),
			tx("T3", 2, 3, entity.TipoEgreso, 70, 15.75),
			tx("T4", 2, 4, entity.TipoCargo, 1, 12),
			tx("T5", 3, 5, entity.TipoEgreso, 63, 16),
			tx("T6", 4, 6, entity.TipoNoCostear, 5, 1),
		}
	}

	primera, err := costeo.CostearGrupo(grupoTest, construir())
	require.NoError(t, err)
	segunda, err := costeo.CostearGrupo(grupoTest, construir())
	require.NoError(t, err)

	require.Equal(t, len(primera.Filas), len(segunda.Filas))
	for i := range primera.Filas {
		assert.Equal(t, primera.Filas[i], segunda.Filas[i], "fila %d difiere entre corridas", i)
	}
	require.Equal(t, len(primera.Detalles), len(segunda.Detalles))
	for i := range primera.Detalles {
		assert.Equal(t, primera.Detalles[i], segunda.Detalles[i])
	}
}

// El desempate con fechas iguales es por secuencia de inserción: el lote con
// secuencia menor se consume primero aunque entre desordenado.
func TestCostearGrupo_DesempatePorSecuencia(t *testing.T) {
	txs := []*entity.Transaccion{
		tx("B", 1, 2, entity.TipoIngreso, 10, 20),
		tx("A", 1, 1, entity.TipoIngreso, 10, 10),
		tx("E", 2, 3, entity.TipoEgreso, 5, 30),
	}

	res, err := costeo.CostearGrupo(grupoTest, txs)
	require.NoError(t, err)
	require.Len(t, res.Detalles, 1)
	assert.Equal(t, "A", res.Detalles[0].IngresoID, "secuencia 1 se consume primero")
}
