// Package catalog lecturas del catálogo maestro (productos, proveedores, bodegas).
// El catálogo lo administra otro sistema; aquí solo se consulta.
package catalog

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// UseCase consultas de catálogo.
type UseCase struct {
	repo repository.CatalogRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.CatalogRepository) *UseCase {
	return &UseCase{repo: repo}
}

// GetProduct obtiene un producto por ID.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return &dto.ProductResponse{ID: p.ID, SKU: p.SKU, Name: p.Name, IsActive: p.IsActive, SupplierID: p.SupplierID}, nil
}

// GetSupplier obtiene un proveedor por ID.
func (uc *UseCase) GetSupplier(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("proveedor %s: %w", id, domain.ErrNotFound)
	}
	return &dto.SupplierResponse{ID: s.ID, Name: s.Name, LeadTimeDays: s.LeadTimeDays}, nil
}

// GetWarehouse obtiene una bodega por ID.
func (uc *UseCase) GetWarehouse(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	w, err := uc.repo.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
	}
	return &dto.WarehouseResponse{ID: w.ID, Name: w.Name, IsActive: w.IsActive}, nil
}
