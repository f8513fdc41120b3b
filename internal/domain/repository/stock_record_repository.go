package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockRecordRepository define el puerto para consultar/actualizar registros de stock.
// Las variantes ForUpdate bloquean la fila hasta el fin de la transacción.
// Los Get devuelven (nil, nil) si el registro no existe.
type StockRecordRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StockRecord, error)
	GetByKey(ctx context.Context, productID, warehouseID, locationID string) (*entity.StockRecord, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error)
	GetByKeyForUpdate(ctx context.Context, productID, warehouseID, locationID string) (*entity.StockRecord, error)
	Create(ctx context.Context, rec *entity.StockRecord) error
	Update(ctx context.Context, rec *entity.StockRecord) error
}
