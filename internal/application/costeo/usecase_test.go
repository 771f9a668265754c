package costeo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcosteo "github.com/jhoicas/Kardex-api/internal/application/costeo"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: un memStore comparte el estado y tres wrappers delgados
// implementan los puertos. El txRunner no abre transacción real; la
// atomicidad la prueba la capa postgres, aquí interesa la orquestación.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu         sync.Mutex
	txs        []*entity.Transaccion
	filas      map[entity.GrupoCosteo][]*entity.KardexRow
	detalles   map[entity.GrupoCosteo][]*entity.DetalleCosteo
	pendientes map[entity.GrupoCosteo][]*entity.EgresoPendiente

	fallaKardex map[entity.GrupoCosteo]bool // simula falla de persistencia por grupo
}

func newMemStore(txs ...*entity.Transaccion) *memStore {
	return &memStore{
		txs:         txs,
		filas:       make(map[entity.GrupoCosteo][]*entity.KardexRow),
		detalles:    make(map[entity.GrupoCosteo][]*entity.DetalleCosteo),
		pendientes:  make(map[entity.GrupoCosteo][]*entity.EgresoPendiente),
		fallaKardex: make(map[entity.GrupoCosteo]bool),
	}
}

type memTxRepo struct{ s *memStore }

var _ repository.TransaccionRepository = (*memTxRepo)(nil)

func (r *memTxRepo) ListarGrupos(_ context.Context, corte time.Time) ([]entity.GrupoCosteo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	vistos := map[entity.GrupoCosteo]bool{}
	var grupos []entity.GrupoCosteo
	for _, tx := range r.s.txs {
		if !tx.Procesada && !tx.Fecha.After(corte) && !vistos[tx.Grupo()] {
			vistos[tx.Grupo()] = true
			grupos = append(grupos, tx.Grupo())
		}
	}
	return grupos, nil
}

func (r *memTxRepo) ListarPorGrupo(_ context.Context, grupo entity.GrupoCosteo, corte time.Time) ([]*entity.Transaccion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaccion
	for _, tx := range r.s.txs {
		if tx.Grupo() == grupo && !tx.Fecha.After(corte) {
			copia := *tx
			out = append(out, &copia)
		}
	}
	return out, nil
}

func (r *memTxRepo) MarcarProcesadas(_ context.Context, grupo entity.GrupoCosteo, corte time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, tx := range r.s.txs {
		if tx.Grupo() == grupo && !tx.Fecha.After(corte) {
			tx.Procesada = true
		}
	}
	return nil
}

func (r *memTxRepo) MarcarNoProcesadasDesde(_ context.Context, grupo *entity.GrupoCosteo, desde time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, tx := range r.s.txs {
		if (grupo == nil || tx.Grupo() == *grupo) && !tx.Fecha.Before(desde) {
			tx.Procesada = false
		}
	}
	return nil
}

func (r *memTxRepo) CrearAjuste(_ context.Context, tx *entity.Transaccion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var maxSeq int64
	for _, t := range r.s.txs {
		if t.Grupo() == tx.Grupo() && t.Secuencia > maxSeq {
			maxSeq = t.Secuencia
		}
	}
	tx.Secuencia = maxSeq + 1
	r.s.txs = append(r.s.txs, tx)
	return nil
}

type memKardexRepo struct{ s *memStore }

var _ repository.KardexRepository = (*memKardexRepo)(nil)

func (r *memKardexRepo) Reemplazar(_ context.Context, grupo entity.GrupoCosteo, filas []*entity.KardexRow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fallaKardex[grupo] {
		return errors.New("conexión perdida")
	}
	r.s.filas[grupo] = filas
	return nil
}

func (r *memKardexRepo) ListarPorGrupo(_ context.Context, grupo entity.GrupoCosteo) ([]*entity.KardexRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.filas[grupo], nil
}

func (r *memKardexRepo) UltimaFilaHasta(_ context.Context, grupo entity.GrupoCosteo, fecha time.Time) (*entity.KardexRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ultima *entity.KardexRow
	for _, f := range r.s.filas[grupo] {
		if !f.Fecha.After(fecha) {
			ultima = f
		}
	}
	return ultima, nil
}

func (r *memKardexRepo) SaldoActual(_ context.Context, grupo entity.GrupoCosteo) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	filas := r.s.filas[grupo]
	if len(filas) == 0 {
		return decimal.Zero, nil
	}
	return filas[len(filas)-1].SaldoCantidad, nil
}

func (r *memKardexRepo) EliminarDesde(_ context.Context, grupo *entity.GrupoCosteo, desde time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for g, filas := range r.s.filas {
		if grupo != nil && g != *grupo {
			continue
		}
		var quedan []*entity.KardexRow
		for _, f := range filas {
			if f.Fecha.Before(desde) {
				quedan = append(quedan, f)
			}
		}
		r.s.filas[g] = quedan
	}
	return nil
}

type memDetalleRepo struct{ s *memStore }

var _ repository.DetalleCosteoRepository = (*memDetalleRepo)(nil)

func (r *memDetalleRepo) Reemplazar(_ context.Context, grupo entity.GrupoCosteo, detalles []*entity.DetalleCosteo, pendientes []*entity.EgresoPendiente) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.detalles[grupo] = detalles
	r.s.pendientes[grupo] = pendientes
	return nil
}

func (r *memDetalleRepo) ListarPorGrupo(_ context.Context, grupo entity.GrupoCosteo) ([]*entity.DetalleCosteo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.detalles[grupo], nil
}

func (r *memDetalleRepo) ListarPendientes(_ context.Context, grupo entity.GrupoCosteo) ([]*entity.EgresoPendiente, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.pendientes[grupo], nil
}

func (r *memDetalleRepo) EliminarDesde(_ context.Context, grupo *entity.GrupoCosteo, desde time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for g, dets := range r.s.detalles {
		if grupo != nil && g != *grupo {
			continue
		}
		var quedan []*entity.DetalleCosteo
		for _, d := range dets {
			if d.Fecha.Before(desde) {
				quedan = append(quedan, d)
			}
		}
		r.s.detalles[g] = quedan
	}
	for g, pends := range r.s.pendientes {
		if grupo != nil && g != *grupo {
			continue
		}
		var quedan []*entity.EgresoPendiente
		for _, p := range pends {
			if p.Fecha.Before(desde) {
				quedan = append(quedan, p)
			}
		}
		r.s.pendientes[g] = quedan
	}
	return nil
}

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) Run(_ context.Context, fn func(
	txRepo repository.TransaccionRepository,
	kardexRepo repository.KardexRepository,
	detalleRepo repository.DetalleCosteoRepository,
) error) error {
	return fn(&memTxRepo{s: r.s}, &memKardexRepo{s: r.s}, &memDetalleRepo{s: r.s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var logTest = logger.New(logger.Config{Env: "development", Level: "error"})

func grupo(n string) entity.GrupoCosteo {
	return entity.GrupoCosteo{EmpresaID: "E1", CustodioID: "C1", InstrumentoID: n, Cuenta: "CTA"}
}

func dia(n int) time.Time { return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC) }

func txg(g entity.GrupoCosteo, id string, d int, seq int64, tipo string, cantidad, precio float64) *entity.Transaccion {
	return &entity.Transaccion{
		ID:            id,
		EmpresaID:     g.EmpresaID,
		CustodioID:    g.CustodioID,
		InstrumentoID: g.InstrumentoID,
		Cuenta:        g.Cuenta,
		Fecha:         dia(d),
		Secuencia:     seq,
		TipoContable:  tipo,
		Cantidad:      decimal.NewFromFloat(cantidad),
		Precio:        decimal.NewFromFloat(precio),
		Moneda:        "CLP",
	}
}

func nuevoUseCase(store *memStore, workers int) *appcosteo.UseCase {
	return appcosteo.NewUseCase(
		&memTxRunner{s: store},
		&memTxRepo{s: store},
		&memKardexRepo{s: store},
		appcosteo.NewCandadoGrupos(),
		workers,
		logTest,
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Pipeline completo de un grupo: cruce, kardex confirmado y transacciones
// marcadas como procesadas.
func TestProcesarGrupo_PipelineCompleto(t *testing.T) {
	g := grupo("AAPL")
	store := newMemStore(
		txg(g, "T1", 1, 1, entity.TipoIngreso, 100, 10),
		txg(g, "T2", 2, 2, entity.TipoEgreso, 60, 15),
	)
	uc := nuevoUseCase(store, 1)

	res, err := uc.ProcesarGrupo(context.Background(), g, dia(10))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Filas)
	assert.Equal(t, 1, res.Detalles)
	assert.Empty(t, res.Pendientes)

	filas, err := uc.GetKardex(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, filas, 2)
	assert.True(t, filas[1].SaldoCantidad.Equal(decimal.NewFromInt(40)))

	saldo, err := uc.SaldoActual(context.Background(), g)
	require.NoError(t, err)
	assert.True(t, saldo.Equal(decimal.NewFromInt(40)))

	for _, tx := range store.txs {
		assert.True(t, tx.Procesada, "transacción %s debe quedar procesada", tx.ID)
	}
}

// El grupo con faltante queda reportado para conciliación manual, pero su
// corrida se confirma igual (el faltante no es fatal).
func TestProcesarCosteo_GrupoConFaltante(t *testing.T) {
	g := grupo("NVDA")
	store := newMemStore(
		txg(g, "T1", 1, 1, entity.TipoIngreso, 40, 10),
		txg(g, "T2", 2, 2, entity.TipoEgreso, 50, 15),
	)
	uc := nuevoUseCase(store, 2)

	res, err := uc.ProcesarCosteo(context.Background(), dia(10))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Procesados)
	assert.Equal(t, 0, res.Fallidos)
	require.Len(t, res.PendientesConciliacion, 1)
	assert.Equal(t, g, res.PendientesConciliacion[0])

	pendientes, err := (&memDetalleRepo{s: store}).ListarPendientes(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.True(t, pendientes[0].CantidadFaltante.Equal(decimal.NewFromInt(10)))
}

// Aislamiento por grupo: la falla de persistencia de un grupo no impide que
// los demás se confirmen, y queda reportada en el resumen del batch.
func TestProcesarCosteo_FallaAislada(t *testing.T) {
	bueno, malo := grupo("OK"), grupo("MAL")
	store := newMemStore(
		txg(bueno, "B1", 1, 1, entity.TipoIngreso, 10, 10),
		txg(malo, "M1", 1, 1, entity.TipoIngreso, 10, 10),
	)
	store.fallaKardex[malo] = true
	uc := nuevoUseCase(store, 2)

	res, err := uc.ProcesarCosteo(context.Background(), dia(10))
	require.NoError(t, err, "el batch entero no falla por un grupo")
	assert.Equal(t, 1, res.Procesados)
	assert.Equal(t, 1, res.Fallidos)
	assert.Contains(t, res.Errores, malo.String())

	filasBueno, _ := (&memKardexRepo{s: store}).ListarPorGrupo(context.Background(), bueno)
	filasMalo, _ := (&memKardexRepo{s: store}).ListarPorGrupo(context.Background(), malo)
	assert.Len(t, filasBueno, 1)
	assert.Empty(t, filasMalo)
}

// Idempotencia: reset + recorrida sobre historia sin cambios reproduce la
// misma secuencia de filas, bit a bit en cantidades y valores.
func TestResetDesde_RecorridaIdentica(t *testing.T) {
	g := grupo("MELI")
	store := newMemStore(
		txg(g, "T1", 1, 1, entity.TipoIngreso, 100, 10.5),
		txg(g, "T2", 2, 2, entity.TipoIngreso, 30, 11),
		txg(g, "T3", 3, 3, entity.TipoEgreso, 110, 15.25),
		txg(g, "T4", 4, 4, entity.TipoCargo, 1, 7),
	)
	uc := nuevoUseCase(store, 1)
	ctx := context.Background()

	_, err := uc.ProcesarGrupo(ctx, g, dia(10))
	require.NoError(t, err)
	original, err := uc.GetKardex(ctx, g)
	require.NoError(t, err)
	originalCopia := make([]entity.KardexRow, len(original))
	for i, f := range original {
		originalCopia[i] = *f
	}

	require.NoError(t, uc.ResetDesde(ctx, &g, dia(1)))
	vacio, err := uc.GetKardex(ctx, g)
	require.NoError(t, err)
	assert.Empty(t, vacio, "el reset descarta las filas")

	grupos, err := (&memTxRepo{s: store}).ListarGrupos(ctx, dia(10))
	require.NoError(t, err)
	assert.Contains(t, grupos, g, "el reset desmarca las transacciones")

	_, err = uc.ProcesarGrupo(ctx, g, dia(10))
	require.NoError(t, err)
	recalculado, err := uc.GetKardex(ctx, g)
	require.NoError(t, err)

	require.Len(t, recalculado, len(originalCopia))
	for i := range recalculado {
		assert.Equal(t, originalCopia[i], *recalculado[i], "fila %d difiere tras el reset", i)
	}
}

// Ciclo de ajuste: tras aceptar un AJUSTE_INGRESO por el faltante, la
// recorrida del grupo cruza el egreso pendiente y el faltante desaparece.
func TestProcesarGrupo_AjusteCierraFaltante(t *testing.T) {
	g := grupo("SQM")
	store := newMemStore(
		txg(g, "T1", 1, 1, entity.TipoIngreso, 40, 10),
		txg(g, "T2", 2, 2, entity.TipoEgreso, 50, 15),
	)
	uc := nuevoUseCase(store, 1)
	ctx := context.Background()

	res, err := uc.ProcesarGrupo(ctx, g, dia(10))
	require.NoError(t, err)
	require.Len(t, res.Pendientes, 1)

	// Se acepta un ajuste que repone el faltante con fecha anterior al egreso.
	ajuste := txg(g, "AJ1", 1, 0, entity.TipoAjusteIngreso, 10, 10)
	require.NoError(t, (&memTxRepo{s: store}).CrearAjuste(ctx, ajuste))

	res, err = uc.ProcesarGrupo(ctx, g, dia(10))
	require.NoError(t, err)
	assert.Empty(t, res.Pendientes, "el ajuste aporta el inventario faltante")

	saldo, err := uc.SaldoActual(ctx, g)
	require.NoError(t, err)
	assert.True(t, saldo.IsZero(), "saldo final: %s", saldo)
}

// ProcesarGrupo exige una clave completa.
func TestProcesarGrupo_GrupoInvalido(t *testing.T) {
	uc := nuevoUseCase(newMemStore(), 1)
	_, err := uc.ProcesarGrupo(context.Background(), entity.GrupoCosteo{EmpresaID: "E1"}, dia(1))
	require.Error(t, err)
}
