package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/retry"
)

// ReferenceTypeOpeningBalance referencia de las compras de apertura.
const ReferenceTypeOpeningBalance = "opening_balance"

var header = []string{"product_id", "warehouse_id", "quantity", "unit_cost", "reorder_point"}

// seedRow una línea del archivo de carga.
type seedRow struct {
	Line         int
	ProductID    string
	WarehouseID  string
	Quantity     int64
	UnitCost     decimal.Decimal
	ReorderPoint *int64
}

// ledger lo que la carga necesita del motor.
type ledger interface {
	UpsertStockRecord(ctx context.Context, in dto.UpsertStockRecordInput) (*entity.StockRecord, error)
	RecordMovement(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error)
}

// decodeInput envuelve r según la codificación del archivo (utf-8 o latin1).
func decodeInput(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}
}

// parseRows lee el CSV. La cabecera es opcional; reorder_point vacío = sin punto de reorden.
func parseRows(r io.Reader) ([]seedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var rows []seedRow
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if first && strings.EqualFold(strings.TrimSpace(rec[0]), header[0]) {
			continue
		}
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		row.Line = line
		rows = append(rows, row)
	}
}

func parseRow(rec []string) (seedRow, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	row := seedRow{ProductID: rec[0], WarehouseID: rec[1]}
	if row.ProductID == "" || row.WarehouseID == "" {
		return row, errors.New("product_id y warehouse_id requeridos")
	}
	qty, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil || qty < 0 {
		return row, fmt.Errorf("quantity inválida %q", rec[2])
	}
	row.Quantity = qty
	if rec[3] != "" {
		cost, err := decimal.NewFromString(rec[3])
		if err != nil || cost.IsNegative() {
			return row, fmt.Errorf("unit_cost inválido %q", rec[3])
		}
		row.UnitCost = cost
	}
	if rec[4] != "" {
		rp, err := strconv.ParseInt(rec[4], 10, 64)
		if err != nil || rp < 0 {
			return row, fmt.Errorf("reorder_point inválido %q", rec[4])
		}
		row.ReorderPoint = &rp
	}
	return row, nil
}

// summary resultado de la carga.
type summary struct {
	Records   int
	Purchases int
	Skipped   int
}

// seed inicializa cada registro y registra la compra de apertura. Los conflictos de
// concurrencia se reintentan con policy; un registro que ya tiene stock no recibe otra apertura.
func seed(ctx context.Context, l ledger, rows []seedRow, policy retry.Policy, performedBy, source string, log zerolog.Logger) (summary, error) {
	var s summary
	for _, row := range rows {
		rec, err := retry.DoWithResult(ctx, policy, func(ctx context.Context) (*entity.StockRecord, error) {
			return l.UpsertStockRecord(ctx, dto.UpsertStockRecordInput{
				ProductID:    row.ProductID,
				WarehouseID:  row.WarehouseID,
				ReorderPoint: row.ReorderPoint,
			})
		})
		if err != nil {
			return s, fmt.Errorf("línea %d: inicializar %s/%s: %w", row.Line, row.ProductID, row.WarehouseID, err)
		}
		s.Records++

		if row.Quantity == 0 {
			continue
		}
		if rec.QuantityOnHand > 0 {
			log.Info().Int("line", row.Line).Str("stock_record_id", rec.ID).Msg("registro con stock, se omite la apertura")
			s.Skipped++
			continue
		}
		cost := row.UnitCost
		_, err = retry.DoWithResult(ctx, policy, func(ctx context.Context) (*dto.MovementResult, error) {
			return l.RecordMovement(ctx, dto.RecordMovementInput{
				StockRecordID: rec.ID,
				MovementType:  entity.MovementTypePurchase,
				Quantity:      row.Quantity,
				UnitCost:      &cost,
				Reference: entity.Reference{
					Type:   ReferenceTypeOpeningBalance,
					Number: fmt.Sprintf("%s:%d", source, row.Line),
				},
				PerformedBy: performedBy,
				Notes:       "saldo inicial",
			})
		})
		if err != nil {
			return s, fmt.Errorf("línea %d: compra de apertura: %w", row.Line, err)
		}
		s.Purchases++
	}
	return s, nil
}
