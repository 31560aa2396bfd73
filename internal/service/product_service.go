package service

import (
	"context"
	"errors"
	"strings"

	"github.com/IagoMorais/sistema-venda/internal/apierror"
	"github.com/IagoMorais/sistema-venda/internal/dto"
	"github.com/IagoMorais/sistema-venda/internal/model"
	"github.com/IagoMorais/sistema-venda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService defines the business logic contract for the catalog.
type ProductService interface {
	Create(ctx context.Context, createdBy uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	LowStock(ctx context.Context) ([]dto.ProductResponse, error)
	BulkImport(ctx context.Context, createdBy uuid.UUID, reqs []dto.CreateProductRequest) *dto.BulkImportResult
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, createdBy uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierror.Validationf("Nome", "Nome é obrigatório")
	}
	brand := strings.TrimSpace(req.Brand)
	if brand == "" {
		return nil, apierror.Validationf("Marca", "Marca é obrigatória")
	}

	price, err := normalizeAmount("Preço", req.Price)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if req.Discount.Present && !req.Discount.Empty {
		if discount, err = normalizeAmount("Desconto", req.Discount); err != nil {
			return nil, err
		}
	}

	quantity, err := normalizeCount("Quantidade", req.Quantity)
	if err != nil {
		return nil, err
	}
	minStock, err := normalizeCount("Estoque mínimo", req.MinStockLevel)
	if err != nil {
		return nil, err
	}

	station := req.Station
	if station == "" {
		station = model.StationKitchen
	}
	if !model.ValidStation(station) {
		return nil, apierror.Validationf("Estação", "Estação inválida")
	}

	p := &model.Product{
		Name:          name,
		Brand:         brand,
		Price:         price,
		Discount:      discount,
		Quantity:      quantity,
		MinStockLevel: minStock,
		Station:       station,
		CreatedBy:     &createdBy,
		Active:        true,
	}
	if req.ImageURL != nil {
		if trimmed := strings.TrimSpace(*req.ImageURL); trimmed != "" {
			p.ImageURL = &trimmed
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Produto não encontrado")
		}
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return productsToResponses(products), nil
}

// Update applies normalization only to the fields present in the payload.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Produto não encontrado")
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apierror.Validationf("Nome", "Nome é obrigatório")
		}
		p.Name = name
	}
	if req.Brand != nil {
		brand := strings.TrimSpace(*req.Brand)
		if brand == "" {
			return nil, apierror.Validationf("Marca", "Marca é obrigatória")
		}
		p.Brand = brand
	}
	if req.Price.Present {
		if p.Price, err = normalizeAmount("Preço", req.Price); err != nil {
			return nil, err
		}
	}
	if req.Discount.Present {
		if p.Discount, err = normalizeAmount("Desconto", req.Discount); err != nil {
			return nil, err
		}
	}
	if req.Quantity.Present {
		if p.Quantity, err = normalizeCount("Quantidade", req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.MinStockLevel.Present {
		if p.MinStockLevel, err = normalizeCount("Estoque mínimo", req.MinStockLevel); err != nil {
			return nil, err
		}
	}
	if req.Station != nil {
		if !model.ValidStation(*req.Station) {
			return nil, apierror.Validationf("Estação", "Estação inválida")
		}
		p.Station = *req.Station
	}
	if req.ImageURL != nil {
		trimmed := strings.TrimSpace(*req.ImageURL)
		if trimmed == "" {
			p.ImageURL = nil
		} else {
			p.ImageURL = &trimmed
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

// Deactivate is the soft-delete path: the product leaves circulation but
// order_items that reference it stay intact.
func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Produto não encontrado")
		}
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *productService) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	return productsToResponses(products), nil
}

// BulkImport validates and creates each row independently, reporting per-row
// outcomes instead of failing the whole batch.
func (s *productService) BulkImport(ctx context.Context, createdBy uuid.UUID, reqs []dto.CreateProductRequest) *dto.BulkImportResult {
	result := &dto.BulkImportResult{
		Success: []dto.BulkImportSuccess{},
		Errors:  []dto.BulkImportError{},
	}
	for _, req := range reqs {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = "desconhecido"
		}
		created, err := s.Create(ctx, createdBy, req)
		if err != nil {
			result.Errors = append(result.Errors, dto.BulkImportError{Product: name, Error: err.Error()})
			continue
		}
		result.Success = append(result.Success, dto.BulkImportSuccess{Product: created.Name, ID: created.ID})
	}
	return result
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Brand:         p.Brand,
		Price:         p.Price,
		Discount:      p.Discount,
		Quantity:      p.Quantity,
		MinStockLevel: p.MinStockLevel,
		ImageURL:      p.ImageURL,
		Station:       p.Station,
		Active:        p.Active,
	}
}

func productsToResponses(products []model.Product) []dto.ProductResponse {
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, *productToResponse(&products[i]))
	}
	return resp
}
