// Package costeo implementa el motor de costeo FIFO (subsistema "kardex"):
// cruce de egresos contra lotes, construcción del kardex con saldo corrido y
// conciliación contra saldos de custodio. Todas las funciones del paquete son
// puras respecto de sus entradas: no hacen I/O y no dependen de estado global;
// la persistencia la inyecta la capa de aplicación.
package costeo

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// LedgerLotes es la cola FIFO de lotes abiertos de un grupo. Los lotes
// agotados no se eliminan: quedan detrás del puntero de cabeza para auditoría.
type LedgerLotes struct {
	lotes []*entity.Lote
	head  int
}

// NewLedgerLotes crea un ledger vacío.
func NewLedgerLotes() *LedgerLotes {
	return &LedgerLotes{}
}

// Abrir encola un lote nuevo al final de la cola.
func (l *LedgerLotes) Abrir(lote *entity.Lote) {
	l.lotes = append(l.lotes, lote)
}

// Vacio indica si no quedan lotes con cantidad restante.
func (l *LedgerLotes) Vacio() bool {
	return l.head >= len(l.lotes)
}

// Disponible suma la cantidad restante de todos los lotes abiertos.
func (l *LedgerLotes) Disponible() decimal.Decimal {
	total := decimal.Zero
	for i := l.head; i < len(l.lotes); i++ {
		total = total.Add(l.lotes[i].CantidadRestante)
	}
	return total
}

// Lotes devuelve todos los lotes, agotados incluidos, en orden de creación.
func (l *LedgerLotes) Lotes() []*entity.Lote {
	return l.lotes
}

// cabeza devuelve el lote abierto más antiguo, avanzando sobre agotados.
func (l *LedgerLotes) cabeza() *entity.Lote {
	for !l.Vacio() {
		lote := l.lotes[l.head]
		if !lote.Agotado() {
			return lote
		}
		l.head++
	}
	return nil
}

// Matcher es la máquina de cruce FIFO de un grupo. Una instancia por grupo
// por corrida; nunca se comparte entre grupos ni entre corridas.
type Matcher struct {
	grupo      entity.GrupoCosteo
	ledger     *LedgerLotes
	detalles   []*entity.DetalleCosteo
	pendientes []*entity.EgresoPendiente
	usadoLote  map[string]decimal.Decimal
}

// NewMatcher construye el matcher para un grupo.
func NewMatcher(grupo entity.GrupoCosteo) *Matcher {
	return &Matcher{
		grupo:     grupo,
		ledger:    NewLedgerLotes(),
		usadoLote: make(map[string]decimal.Decimal),
	}
}

// Procesar aplica una transacción en orden de llegada.
//
// INGRESO/AJUSTE_INGRESO abren un lote al final de la cola. EGRESO y
// AJUSTE_EGRESO consumen de la cabeza, lote más antiguo primero (el desempate
// es estrictamente por secuencia de creación del lote, nunca por precio),
// emitiendo un DetalleCosteo por lote tocado. CARGO/DIVIDENDO/RETORNO y
// NO_COSTEAR no tocan la cola.
//
// Si la cola se agota con cantidad sin cruzar, el cruce parcial queda
// registrado, el faltante se acumula como EgresoPendiente y se retorna un
// *domain.SaldoInsuficienteError; el caller decide continuar (el batch no se
// aborta por esto).
func (m *Matcher) Procesar(tx *entity.Transaccion) error {
	switch {
	case tx.EsIngreso():
		return m.abrirLote(tx)
	case tx.EsEgreso():
		return m.consumir(tx)
	}
	// CARGO/DIVIDENDO/RETORNO y NO_COSTEAR no participan del cruce.
	return nil
}

func (m *Matcher) abrirLote(tx *entity.Transaccion) error {
	if !tx.Cantidad.IsPositive() {
		return &domain.InvarianteError{
			Grupo:   m.grupo,
			Detalle: "ingreso " + tx.ID + " con cantidad no positiva " + tx.Cantidad.String(),
		}
	}
	m.ledger.Abrir(&entity.Lote{
		ID:                  tx.ID,
		TransaccionOrigenID: tx.ID,
		FechaCompra:         tx.Fecha,
		Secuencia:           tx.Secuencia,
		CantidadOriginal:    tx.Cantidad,
		CantidadRestante:    tx.Cantidad,
		CostoUnitario:       tx.Precio,
	})
	return nil
}

func (m *Matcher) consumir(tx *entity.Transaccion) error {
	if !tx.Cantidad.IsPositive() {
		return &domain.InvarianteError{
			Grupo:   m.grupo,
			Detalle: "egreso " + tx.ID + " con cantidad no positiva " + tx.Cantidad.String(),
		}
	}
	disponible := m.ledger.Disponible()
	restante := tx.Cantidad

	for restante.IsPositive() {
		lote := m.ledger.cabeza()
		if lote == nil {
			break
		}
		usar := decimal.Min(restante, lote.CantidadRestante)

		detalle := &entity.DetalleCosteo{
			ID:            uuid.New().String(),
			EgresoID:      tx.ID,
			IngresoID:     lote.TransaccionOrigenID,
			Fecha:         tx.Fecha,
			CantidadUsada: usar,
			CostoUnitario: lote.CostoUnitario,
		}
		m.detalles = append(m.detalles, detalle)

		lote.CantidadRestante = lote.CantidadRestante.Sub(usar)
		restante = restante.Sub(usar)

		usado := m.usadoLote[lote.ID].Add(usar)
		m.usadoLote[lote.ID] = usado
		if lote.CantidadRestante.IsNegative() || usado.GreaterThan(lote.CantidadOriginal) {
			return &domain.InvarianteError{
				Grupo:   m.grupo,
				Detalle: "lote " + lote.ID + " sobreconsumido: usado " + usado.String() + " de " + lote.CantidadOriginal.String(),
			}
		}
	}

	if restante.IsPositive() {
		m.pendientes = append(m.pendientes, &entity.EgresoPendiente{
			EgresoID:         tx.ID,
			Fecha:            tx.Fecha,
			CantidadFaltante: restante,
		})
		return &domain.SaldoInsuficienteError{
			Grupo:      m.grupo,
			EgresoID:   tx.ID,
			Requerida:  tx.Cantidad,
			Disponible: disponible,
		}
	}
	return nil
}

// Detalles devuelve los cruces emitidos hasta ahora, en orden de emisión.
func (m *Matcher) Detalles() []*entity.DetalleCosteo {
	return m.detalles
}

// Pendientes devuelve los egresos con faltante registrados hasta ahora.
func (m *Matcher) Pendientes() []*entity.EgresoPendiente {
	return m.pendientes
}

// Ledger expone la cola de lotes (auditoría y tests).
func (m *Matcher) Ledger() *LedgerLotes {
	return m.ledger
}

// OrdenarTransacciones ordena in-place por (fecha, secuencia), el orden
// canónico del feed. El orden estable garantiza recálculos bit a bit.
func OrdenarTransacciones(txs []*entity.Transaccion) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Fecha.Equal(txs[j].Fecha) {
			return txs[i].Fecha.Before(txs[j].Fecha)
		}
		return txs[i].Secuencia < txs[j].Secuencia
	})
}
