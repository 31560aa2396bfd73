package service

import (
	"context"
	"errors"
	"time"

	"github.com/IagoMorais/sistema-venda/internal/apierror"
	"github.com/IagoMorais/sistema-venda/internal/dto"
	"github.com/IagoMorais/sistema-venda/internal/model"
	"github.com/IagoMorais/sistema-venda/internal/repository"
	"github.com/IagoMorais/sistema-venda/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService is the single authority for every operation that mutates stock
// or order status.
type OrderService interface {
	Create(ctx context.Context, waiterID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Checkout(ctx context.Context, orderID, cashierID uuid.UUID, req dto.CheckoutOrderRequest) (*dto.OrderResponse, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*dto.OrderResponse, error)
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status string) (*dto.OrderItemResponse, error)
	StationQueue(ctx context.Context, station string) ([]dto.OrderResponse, error)
	ListByStatus(ctx context.Context, status string) ([]dto.OrderResponse, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*dto.OrderResponse, error)
	SalesStats(ctx context.Context) (*dto.SalesStatsResponse, error)
}

type orderService struct {
	repo           repository.OrderRepository
	productRepo    repository.ProductRepository
	dispatcher     *worker.Dispatcher
	toleranceCents int64
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	dispatcher *worker.Dispatcher,
	toleranceCents int,
) OrderService {
	return &orderService{
		repo:           repo,
		productRepo:    productRepo,
		dispatcher:     dispatcher,
		toleranceCents: int64(toleranceCents),
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ───────────────────────────────────────────────────────────────────
// One ACID transaction:
//  1. load all referenced products, reject missing/inactive ones
//  2. aggregate requested quantity per product (duplicate lines are summed)
//     and verify on-hand stock covers the aggregate demand
//  3. insert the order with its price/station item snapshots and the total
//  4. decrement stock per line with a guarded UPDATE — a failed guard aborts
//     everything, so no partial order is ever observable

func (s *orderService) Create(ctx context.Context, waiterID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Validationf("Itens", "O pedido precisa de pelo menos um item")
	}

	type line struct {
		productID uuid.UUID
		quantity  int
	}
	lines := make([]line, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apierror.Validationf("Quantidade", "Quantidade deve ser um inteiro positivo")
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apierror.Validationf("Produto", "productId inválido: %s", item.ProductID)
		}
		lines = append(lines, line{productID: pid, quantity: item.Quantity})
	}

	var order *model.Order
	var alerts []worker.StockAlert

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(lines))
		seen := make(map[uuid.UUID]bool, len(lines))
		required := make(map[uuid.UUID]int, len(lines))
		for _, l := range lines {
			required[l.productID] += l.quantity
			if !seen[l.productID] {
				seen[l.productID] = true
				ids = append(ids, l.productID)
			}
		}

		records, err := s.productRepo.FindByIDsTx(tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.Product, len(records))
		for i := range records {
			byID[records[i].ID] = &records[i]
		}

		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				return apierror.NotFound("Produto " + id.String() + " não encontrado")
			}
			if !p.Active {
				return apierror.Validationf("Produto", "Produto %s está inativo", p.Name)
			}
			if p.Quantity < required[id] {
				return &apierror.InsufficientStockError{ProductName: p.Name}
			}
		}

		order = &model.Order{
			TableNumber: req.TableNumber,
			Status:      model.OrderOpen,
			WaiterID:    waiterID,
			TotalAmount: decimal.Zero,
		}

		total := decimal.Zero
		for _, l := range lines {
			p := byID[l.productID]
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.quantity))))
			order.Items = append(order.Items, model.OrderItem{
				ProductID:   p.ID,
				Quantity:    l.quantity,
				PriceAtTime: p.Price,
				Station:     p.Station,
				Status:      model.ItemPending,
				Product:     p,
			})
		}
		order.TotalAmount = total.Round(2)

		if err := s.repo.CreateTx(tx, order); err != nil {
			return err
		}

		for _, id := range ids {
			p := byID[id]
			ok, err := s.productRepo.DecrementStockTx(tx, id, required[id])
			if err != nil {
				return err
			}
			if !ok {
				// Lost the race against a concurrent placement since the check above.
				return &apierror.InsufficientStockError{ProductName: p.Name}
			}
			remaining := p.Quantity - required[id]
			if remaining <= p.MinStockLevel {
				alerts = append(alerts, worker.StockAlert{
					ProductID:     p.ID.String(),
					Name:          p.Name,
					Quantity:      remaining,
					MinStockLevel: p.MinStockLevel,
				})
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Low-stock alerts are best-effort after commit: a failed enqueue never
	// fails the placement, but it has to show up in the logs.
	if s.dispatcher != nil {
		for _, alert := range alerts {
			if err := s.dispatcher.EnqueueStockAlert(ctx, alert); err != nil {
				log.Warn().Err(err).
					Str("product_id", alert.ProductID).
					Str("product", alert.Name).
					Msg("failed to enqueue stock alert")
			}
		}
	}

	return orderToResponse(order), nil
}

// ── Checkout ─────────────────────────────────────────────────────────────────

func (s *orderService) Checkout(ctx context.Context, orderID, cashierID uuid.UUID, req dto.CheckoutOrderRequest) (*dto.OrderResponse, error) {
	if !model.ValidPaymentMethod(req.PaymentMethod) {
		return nil, apierror.Validationf("Forma de pagamento", "Forma de pagamento inválida")
	}

	var order *model.Order
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		order, err = s.repo.FindWithItemsTx(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Pedido não encontrado")
			}
			return err
		}
		if order.Status != model.OrderOpen {
			return apierror.InvalidState("Pedido não está aberto para finalização")
		}
		for _, item := range order.Items {
			if item.Status != model.ItemReady && item.Status != model.ItemDelivered {
				return apierror.Precheckout("Todos os itens precisam estar prontos antes de finalizar")
			}
		}

		computed := decimal.Zero
		for _, item := range order.Items {
			computed = computed.Add(item.PriceAtTime.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		computed = computed.Round(2)

		total := computed
		if req.TotalAmount.Present && req.TotalAmount.Valid {
			supplied := req.TotalAmount.Value.Round(2)
			tolerance := decimal.New(s.toleranceCents, -2)
			if supplied.Sub(computed).Abs().GreaterThan(tolerance) {
				return apierror.Validationf("Total", "Total informado diverge do valor calculado")
			}
			total = supplied
		}

		now := time.Now()
		method := req.PaymentMethod
		ok, err := s.repo.TransitionTx(tx, orderID, model.OrderOpen, map[string]interface{}{
			"status":         model.OrderPaid,
			"cashier_id":     cashierID,
			"payment_method": method,
			"total_amount":   total,
			"closed_at":      now,
		})
		if err != nil {
			return err
		}
		if !ok {
			// A concurrent checkout or cancel settled the order after our read.
			return apierror.InvalidState("Pedido não está aberto para finalização")
		}

		order.Status = model.OrderPaid
		order.CashierID = &cashierID
		order.PaymentMethod = &method
		order.TotalAmount = total
		order.ClosedAt = &now
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return orderToResponse(order), nil
}

// ── Cancel ───────────────────────────────────────────────────────────────────

func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID) (*dto.OrderResponse, error) {
	var order *model.Order
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		order, err = s.repo.FindWithItemsTx(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Pedido não encontrado")
			}
			return err
		}
		// Cancelling twice is a no-op returning the terminal state unchanged.
		if order.Status == model.OrderCancelled {
			return nil
		}
		if order.Status == model.OrderPaid {
			return apierror.InvalidState("Pedido pago não pode ser cancelado")
		}

		// Claim the transition before touching stock: the status guard makes
		// exactly one concurrent cancel (or checkout) win, so the additive
		// restore below can never run twice for the same order.
		now := time.Now()
		ok, err := s.repo.TransitionTx(tx, orderID, model.OrderOpen, map[string]interface{}{
			"status":    model.OrderCancelled,
			"closed_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			current, err := s.repo.FindWithItemsTx(tx, orderID)
			if err != nil {
				return err
			}
			if current.Status == model.OrderCancelled {
				order = current
				return nil
			}
			return apierror.InvalidState("Pedido pago não pode ser cancelado")
		}

		for _, item := range order.Items {
			// Re-read so the restore is additive over the current quantity even
			// if the catalog changed since placement. A product deactivated in
			// the meantime still gets its stock back.
			if _, err := s.productRepo.FindByIDTx(tx, item.ProductID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			if err := s.productRepo.RestoreStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order.Status = model.OrderCancelled
		order.ClosedAt = &now
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return orderToResponse(order), nil
}

// ── Item status ──────────────────────────────────────────────────────────────

// UpdateItemStatus overwrites the item status with any valid value.
// Backward transitions are accepted on purpose: stations use them to send an
// item back to the queue after a mistaken tap.
func (s *orderService) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status string) (*dto.OrderItemResponse, error) {
	if !model.ValidItemStatus(status) {
		return nil, apierror.Validationf("Status", "Status inválido para item do pedido")
	}
	item, err := s.repo.UpdateItemStatus(ctx, itemID, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Item do pedido não encontrado")
		}
		return nil, err
	}
	resp := itemToResponse(item)
	return &resp, nil
}

// ── Read projections ─────────────────────────────────────────────────────────

func (s *orderService) StationQueue(ctx context.Context, station string) ([]dto.OrderResponse, error) {
	if !model.ValidStation(station) {
		return nil, apierror.Validationf("Estação", "Estação inválida")
	}
	orders, err := s.repo.StationQueue(ctx, station)
	if err != nil {
		return nil, err
	}
	return ordersToResponses(orders), nil
}

func (s *orderService) ListByStatus(ctx context.Context, status string) ([]dto.OrderResponse, error) {
	if !model.ValidOrderStatus(status) {
		return nil, apierror.Validationf("Status", "Status de pedido inválido")
	}
	orders, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return ordersToResponses(orders), nil
}

func (s *orderService) GetByID(ctx context.Context, orderID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Pedido não encontrado")
		}
		return nil, err
	}
	return orderToResponse(order), nil
}

func (s *orderService) SalesStats(ctx context.Context) (*dto.SalesStatsResponse, error) {
	totals, top, err := s.repo.SalesStats(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.SalesStatsResponse{
		TotalSales:   totals.TotalSales,
		TotalRevenue: totals.TotalRevenue.Round(2),
		TopProducts:  make([]dto.TopProduct, 0, len(top)),
	}
	for _, row := range top {
		resp.TopProducts = append(resp.TopProducts, dto.TopProduct{
			ProductID: row.ProductID.String(),
			Name:      row.Name,
			Quantity:  row.Quantity,
		})
	}
	return resp, nil
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func itemToResponse(item *model.OrderItem) dto.OrderItemResponse {
	resp := dto.OrderItemResponse{
		ID:          item.ID.String(),
		ProductID:   item.ProductID.String(),
		Quantity:    item.Quantity,
		PriceAtTime: item.PriceAtTime,
		Station:     item.Station,
		Status:      item.Status,
	}
	if item.Product != nil {
		resp.Product = dto.ProductRef{
			Name:    item.Product.Name,
			Brand:   item.Product.Brand,
			Station: item.Product.Station,
		}
	}
	return resp
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, itemToResponse(&o.Items[i]))
	}
	var cashierID *string
	if o.CashierID != nil {
		id := o.CashierID.String()
		cashierID = &id
	}
	return &dto.OrderResponse{
		ID:            o.ID.String(),
		TableNumber:   o.TableNumber,
		Status:        o.Status,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		WaiterID:      o.WaiterID.String(),
		CashierID:     cashierID,
		CreatedAt:     o.CreatedAt,
		ClosedAt:      o.ClosedAt,
		Items:         items,
	}
}

func ordersToResponses(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, *orderToResponse(&orders[i]))
	}
	return resp
}
