package handler

import (
	"net/http"

	"github.com/IagoMorais/sistema-venda/internal/apierror"
	"github.com/IagoMorais/sistema-venda/internal/dto"
	"github.com/IagoMorais/sistema-venda/internal/middleware"
	"github.com/IagoMorais/sistema-venda/internal/model"
	"github.com/IagoMorais/sistema-venda/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// Create godoc
// @Summary      Criar pedido
// @Description  Cria um pedido ACID: reserva estoque, roteia itens por estação e calcula o total.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateOrderRequest true "Mesa e itens"
// @Success      201 {object} dto.OrderResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	waiterID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), waiterID, req)
	middleware.RecordOrderOperation("create", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns orders filtered by status; defaults to paid.
func (h *OrdersHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", model.OrderPaid)
	if !model.ValidOrderStatus(status) {
		status = model.OrderPaid
	}
	resp, err := h.svc.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListOpen returns the open orders awaiting checkout.
func (h *OrdersHandler) ListOpen(c *gin.Context) {
	resp, err := h.svc.ListByStatus(c.Request.Context(), model.OrderOpen)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Checkout godoc
// @Summary      Finalizar pedido
// @Description  Marca o pedido como pago. Todos os itens precisam estar prontos ou entregues.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID do pedido"
// @Param        body body dto.CheckoutOrderRequest true "Forma de pagamento e total"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/orders/{id}/checkout [post]
func (h *OrdersHandler) Checkout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CheckoutOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Checkout(c.Request.Context(), id, cashierID, req)
	middleware.RecordOrderOperation("checkout", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Description  Cancela um pedido aberto restaurando o estoque de cada item. Idempotente.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do pedido"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/orders/{id}/cancel [patch]
func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id)
	middleware.RecordOrderOperation("cancel", err == nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateItemStatus moves an order item through its preparation statuses.
func (h *OrdersHandler) UpdateItemStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.UpdateItemStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateItemStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SalesStats godoc
// @Summary      Estatísticas de vendas
// @Description  Total de vendas pagas, receita e produtos mais vendidos, em um snapshot consistente.
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SalesStatsResponse
// @Router       /v1/stats [get]
func (h *OrdersHandler) SalesStats(c *gin.Context) {
	resp, err := h.svc.SalesStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StationQueue returns pending items for the caller's own station. The station
// comes from the authenticated role, never from the request.
func (h *OrdersHandler) StationQueue(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if !model.ValidStation(claims.Role) {
		c.JSON(http.StatusBadRequest, apierror.New("Estação inválida"))
		return
	}
	resp, err := h.svc.StationQueue(c.Request.Context(), claims.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
