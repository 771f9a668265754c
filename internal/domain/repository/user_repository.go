package repository

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Solo lectura: los usuarios se aprovisionan por fuera de esta API.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
