package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// GetMovements consulta paginada del ledger. RunningTotal viene desnormalizado en cada
// entrada, así que no se recalculan saldos.
func (uc *LedgerUseCase) GetMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementPage, error) {
	filter.Normalize()
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("rango de fechas invertido: %w", domain.ErrValidation)
	}
	for _, t := range filter.Types {
		if !t.Valid() {
			return nil, fmt.Errorf("tipo de movimiento %q: %w", t, domain.ErrValidation)
		}
	}
	items, total, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.MovementRecord{}
	}
	return &dto.MovementPage{
		Items:        items,
		PageResponse: dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// GetMovement obtiene una entrada del ledger por ID.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, id string) (*entity.MovementRecord, error) {
	mov, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, fmt.Errorf("movimiento %s: %w", id, domain.ErrNotFound)
	}
	return mov, nil
}
