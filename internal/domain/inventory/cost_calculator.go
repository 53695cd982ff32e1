package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost implementa la lógica de costo promedio ponderado
// (servicio de dominio) para una entrada de stock:
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedAverageCost(currentStock int64, currentCost decimal.Decimal, inQty int64, inCost decimal.Decimal) decimal.Decimal {
	total := currentStock + inQty
	if total <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(currentStock).Mul(currentCost).
		Add(decimal.NewFromInt(inQty).Mul(inCost))
	return num.Div(decimal.NewFromInt(total))
}
