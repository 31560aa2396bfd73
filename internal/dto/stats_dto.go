package dto

import "github.com/shopspring/decimal"

// TopProduct is one entry of the best-sellers ranking across paid orders.
type TopProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
}

type SalesStatsResponse struct {
	TotalSales   int64           `json:"totalSales"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TopProducts  []TopProduct    `json:"topProducts"`
}
