package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	Price         Numeric `json:"price"`
	Discount      Numeric `json:"discount"`
	Quantity      Numeric `json:"quantity"`
	MinStockLevel Numeric `json:"minStockLevel"`
	ImageURL      *string `json:"imageUrl"`
	Station       string  `json:"station"`
}

// UpdateProductRequest applies only the fields present in the payload.
type UpdateProductRequest struct {
	Name          *string `json:"name"`
	Brand         *string `json:"brand"`
	Price         Numeric `json:"price"`
	Discount      Numeric `json:"discount"`
	Quantity      Numeric `json:"quantity"`
	MinStockLevel Numeric `json:"minStockLevel"`
	ImageURL      *string `json:"imageUrl"`
	Station       *string `json:"station"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	Quantity      int             `json:"quantity"`
	MinStockLevel int             `json:"minStockLevel"`
	ImageURL      *string         `json:"imageUrl"`
	Station       string          `json:"station"`
	Active        bool            `json:"active"`
}

// BulkImportResult reports per-row outcomes of a catalog import.
type BulkImportResult struct {
	Success []BulkImportSuccess `json:"success"`
	Errors  []BulkImportError   `json:"errors"`
}

type BulkImportSuccess struct {
	Product string `json:"product"`
	ID      string `json:"id"`
}

type BulkImportError struct {
	Product string `json:"product"`
	Error   string `json:"error"`
}
