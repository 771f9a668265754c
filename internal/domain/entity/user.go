package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleAnalista = "analista"
)

// User representa un usuario del back-office. Los usuarios se aprovisionan
// por fuera de esta API; aquí solo se autentican.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, analista
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
