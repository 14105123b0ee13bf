package domain

import "github.com/shopspring/decimal"

type QuoteLine struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote prices a cart from the snapshot captured when items were added.
type Quote struct {
	Lines    []QuoteLine
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}
