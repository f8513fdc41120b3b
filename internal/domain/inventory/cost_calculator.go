package inventory

import "github.com/shopspring/decimal"

// CostScale decimales con que se persiste el costo promedio (NUMERIC(18,4)).
const CostScale = 4

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con StockActual == 0 el costo nuevo es directamente el costo de la entrada.
func CostCalculator(stockActual int64, costoActual decimal.Decimal, cantEntrada int64, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual <= 0 {
		return costoEntrada.Round(CostScale)
	}
	sum := stockActual + cantEntrada
	if sum <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(stockActual).Mul(costoActual).
		Add(decimal.NewFromInt(cantEntrada).Mul(costoEntrada))
	return num.Div(decimal.NewFromInt(sum)).Round(CostScale)
}

// Valuation costo total de |quantity| unidades a unitCost.
func Valuation(quantity int64, unitCost decimal.Decimal) decimal.Decimal {
	if quantity < 0 {
		quantity = -quantity
	}
	return unitCost.Mul(decimal.NewFromInt(quantity))
}
