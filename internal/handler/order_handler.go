package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"storefront/internal/model"
	"storefront/internal/service"
)

// OrderHandler serves checkout and order lifecycle endpoints.
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderItemRequest is one cart line.
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	Image     string          `json:"imageUrl"`
}

// CreateOrderRequest represents a checkout.
type CreateOrderRequest struct {
	Items           []OrderItemRequest    `json:"items" validate:"required,min=1,dive"`
	ShippingAddress model.AddressSnapshot `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod" validate:"required"`
	TotalAmount     decimal.Decimal       `json:"totalAmount"`
}

// OrderStatusRequest moves an order to its next status.
type OrderStatusRequest struct {
	Status model.OrderStatus `json:"status" validate:"required"`
}

// CreateOrder godoc
// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Checkout"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/orders [post]
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	var req CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), claims.UserID, service.CreateOrderInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"message": "Order placed successfully", "order": order})
}

// ListOrders godoc
// @Summary List the caller's orders, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /user/orders [get]
func (h *OrderHandler) ListOrders(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	orders, err := h.orderService.ListOrdersForUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"orders": orders})
}

// GetOrder godoc
// @Summary Get one of the caller's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/orders/{id} [get]
func (h *OrderHandler) GetOrder(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	order, err := h.orderService.GetOrder(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"order": order})
}

// CancelOrder godoc
// @Summary Cancel one of the caller's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/orders/{id}/cancel [put]
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	order, err := h.orderService.CancelOrder(c.Request().Context(), claims.UserID, id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Order cancelled successfully", "order": order})
}

// ListAllOrders godoc
// @Summary List every order, newest first
// @Tags admin-orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/orders [get]
func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.orderService.ListAllOrders(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"orders": orders})
}

// UpdateOrderStatus godoc
// @Summary Advance an order along its lifecycle
// @Tags admin-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body OrderStatusRequest true "Next status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req OrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, err)
	}
	order, err := h.orderService.AdvanceOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "Order status updated successfully", "order": order})
}
