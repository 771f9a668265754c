package entity

import "fmt"

// GrupoCosteo identifica un kardex FIFO independiente:
// (empresa, custodio, instrumento, cuenta). Dos transacciones con la misma
// clave comparten la cola de lotes; grupos distintos nunca interactúan.
type GrupoCosteo struct {
	EmpresaID     string
	CustodioID    string
	InstrumentoID string
	Cuenta        string
}

// String forma legible de la clave, usada en logs y mensajes de error.
func (g GrupoCosteo) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", g.EmpresaID, g.CustodioID, g.InstrumentoID, g.Cuenta)
}

// Valida verifica que la clave esté completa.
func (g GrupoCosteo) Valida() bool {
	return g.EmpresaID != "" && g.CustodioID != "" && g.InstrumentoID != "" && g.Cuenta != ""
}
