package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CatalogRepository lecturas del catálogo (productos, proveedores, bodegas) que consume el motor.
// Devuelve (nil, nil) si no existe.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	GetSupplier(ctx context.Context, id string) (*entity.Supplier, error)
	GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error)
}
