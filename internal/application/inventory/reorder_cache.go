package inventory

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

// ReorderLoader consulta las sugerencias frescas para una bodega ("" = todas).
type ReorderLoader func(ctx context.Context, warehouseID string) ([]dto.ReorderSuggestionDTO, error)

type reorderEntry struct {
	items     []dto.ReorderSuggestionDTO
	fetchedAt time.Time
	gen       uint64
}

// ReorderCache caché local del proceso para sugerencias de reorden, con TTL y generación.
// Invalidate sube la generación: las entradas previas dejan de ser frescas pero se conservan
// como respaldo si la siguiente carga falla. Nunca se consulta para decidir una mutación.
type ReorderCache struct {
	entries *lru.Cache[string, reorderEntry]
	ttl     time.Duration
	gen     atomic.Uint64
	group   singleflight.Group
	log     zerolog.Logger
	now     func() time.Time
}

// NewReorderCache crea la caché. maxScopes acota cuántas bodegas distintas se guardan.
func NewReorderCache(ttl time.Duration, maxScopes int, log zerolog.Logger) (*ReorderCache, error) {
	if maxScopes <= 0 {
		maxScopes = 64
	}
	entries, err := lru.New[string, reorderEntry](maxScopes)
	if err != nil {
		return nil, fmt.Errorf("crear caché de reorden: %w", err)
	}
	return &ReorderCache{
		entries: entries,
		ttl:     ttl,
		log:     log.With().Str("component", "reorder_cache").Logger(),
		now:     time.Now,
	}, nil
}

// Invalidate marca todas las entradas como vencidas.
func (c *ReorderCache) Invalidate() {
	c.gen.Add(1)
}

// Get devuelve las sugerencias de la bodega. Si la entrada está vencida carga con load
// (una sola carga concurrente por bodega y generación). Si la carga falla sirve el último
// valor bueno o una lista vacía; el error solo se registra.
func (c *ReorderCache) Get(ctx context.Context, warehouseID string, load ReorderLoader) []dto.ReorderSuggestionDTO {
	gen := c.gen.Load()
	entry, ok := c.entries.Get(warehouseID)
	if ok && entry.gen == gen && c.now().Sub(entry.fetchedAt) < c.ttl {
		return copySuggestions(entry.items)
	}

	key := fmt.Sprintf("%s#%d", warehouseID, gen)
	v, err, _ := c.group.Do(key, func() (any, error) {
		items, err := load(context.WithoutCancel(ctx), warehouseID)
		if err != nil {
			return nil, err
		}
		c.store(warehouseID, reorderEntry{items: items, fetchedAt: c.now(), gen: gen})
		return items, nil
	})
	if err != nil {
		if last, ok := c.entries.Get(warehouseID); ok {
			c.log.Warn().Err(err).Str("warehouse_id", warehouseID).
				Time("fetched_at", last.fetchedAt).Msg("sugerencias de reorden: sirviendo valor anterior")
			return copySuggestions(last.items)
		}
		c.log.Warn().Err(err).Str("warehouse_id", warehouseID).Msg("sugerencias de reorden: sin valor anterior, lista vacía")
		return []dto.ReorderSuggestionDTO{}
	}
	return copySuggestions(v.([]dto.ReorderSuggestionDTO))
}

// store no pisa una entrada de una generación más nueva.
func (c *ReorderCache) store(warehouseID string, e reorderEntry) {
	if cur, ok := c.entries.Peek(warehouseID); ok && cur.gen > e.gen {
		return
	}
	c.entries.Add(warehouseID, e)
}

func copySuggestions(items []dto.ReorderSuggestionDTO) []dto.ReorderSuggestionDTO {
	out := make([]dto.ReorderSuggestionDTO, len(items))
	copy(out, items)
	return out
}
