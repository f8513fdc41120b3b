package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre el registro de stock y el ledger: si fn devuelve error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// Notifier recibe los eventos de dominio después del commit.
// Notify no debe bloquear: encola y retorna; un error es solo informativo.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification) error
}

// CacheInvalidator lo implementa la caché de sugerencias de reorden.
type CacheInvalidator interface {
	Invalidate()
}
