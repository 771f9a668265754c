package costeo

import (
	"sync"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// CandadoGrupos serializa el trabajo por grupo dentro del proceso: el cruce,
// la conciliación y el reset sobre un mismo grupo nunca corren en paralelo.
// Grupos distintos no se bloquean entre sí.
type CandadoGrupos struct {
	mu       sync.Mutex
	porGrupo map[entity.GrupoCosteo]*sync.Mutex
}

// NewCandadoGrupos construye el candado.
func NewCandadoGrupos() *CandadoGrupos {
	return &CandadoGrupos{porGrupo: make(map[entity.GrupoCosteo]*sync.Mutex)}
}

// Bloquear toma el candado del grupo y devuelve la función que lo libera.
// Los mutex no se eliminan del mapa: el universo de grupos es acotado.
func (c *CandadoGrupos) Bloquear(grupo entity.GrupoCosteo) func() {
	c.mu.Lock()
	m, ok := c.porGrupo[grupo]
	if !ok {
		m = &sync.Mutex{}
		c.porGrupo[grupo] = m
	}
	c.mu.Unlock()

	m.Lock()
	return m.Unlock
}
