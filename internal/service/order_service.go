package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/observability"
	"storefront/internal/repository"
)

// maxOrderNumberAttempts bounds regeneration after an order number collision.
const maxOrderNumberAttempts = 5

// OrderItemInput is one cart line as sent by the client.
type OrderItemInput struct {
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Image     string
}

// CreateOrderInput carries a checkout.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress model.AddressSnapshot
	PaymentMethod   string
	TotalAmount     decimal.Decimal
}

// OrderService handles order placement and the order status lifecycle.
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*model.Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	AdvanceOrderStatus(ctx context.Context, orderID uuid.UUID, next model.OrderStatus) (*model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	metrics     *observability.OrderMetrics
	orderNumber func() string
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, metrics *observability.OrderMetrics) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		metrics:     metrics,
		orderNumber: NewOrderNumber,
	}
}

// NewOrderNumber returns "ORD" followed by the unix time in milliseconds and a
// random number below 1000.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD%d%d", time.Now().UnixMilli(), rand.Intn(1000))
}

func validateOrder(in *CreateOrderInput) error {
	if len(in.Items) == 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "order must contain at least one item")
	}
	for i, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("item %d: product is required", i+1))
		}
		if item.Quantity <= 0 {
			return apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("item %d: quantity must be positive", i+1))
		}
		if item.Price.IsNegative() {
			return apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("item %d: price must not be negative", i+1))
		}
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "payment method is required")
	}
	if in.TotalAmount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrValidation, "total amount must not be negative")
	}

	addr := &in.ShippingAddress
	if addr.FullName == "" || addr.Phone == "" || addr.AddressLine1 == "" ||
		addr.City == "" || addr.State == "" || addr.Pincode == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "shipping address is incomplete")
	}
	if addr.Country == "" {
		addr.Country = model.DefaultCountry
	}
	return nil
}

// CreateOrder stores a pending order with copies of the cart lines and the
// shipping address. A colliding order number is regenerated.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*model.Order, error) {
	if err := validateOrder(&in); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(in.Items))
	for i, item := range in.Items {
		items = append(items, model.OrderItem{
			Position:  i,
			ProductID: item.ProductID,
			Name:      strings.TrimSpace(item.Name),
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}

	order := &model.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: datatypes.NewJSONType(in.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		TotalAmount:     in.TotalAmount,
		Status:          model.OrderStatusPending,
	}

	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = s.orderNumber()
		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create order: %w", err)
		}
		s.metrics.OrderNumberCollision(ctx)
		slog.WarnContext(ctx, "order number collision", "order_number", order.OrderNumber, "attempt", attempt)
	}
	if err != nil {
		return nil, fmt.Errorf("create order: no free order number after %d attempts: %w", maxOrderNumberAttempts, err)
	}

	s.metrics.OrderPlaced(ctx, order.PaymentMethod, order.TotalAmount.InexactFloat64())
	slog.InfoContext(ctx, "order placed", "order_id", order.ID, "order_number", order.OrderNumber, "user_id", userID)

	return s.reload(ctx, order.ID)
}

func (s *orderService) reload(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "order not found")
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns an order owned by userID. Orders of other users are
// reported as not found.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "order not found")
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("order cannot be cancelled once %s", strings.ToLower(string(order.Status))))
	}
	return s.transition(ctx, order, model.OrderStatusCancelled)
}

// AdvanceOrderStatus moves an order one step along the lifecycle.
func (s *orderService) AdvanceOrderStatus(ctx context.Context, orderID uuid.UUID, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("unknown order status %q", next))
	}
	order, err := s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, next)
}

// transition writes the new status only if the order is still in the status that
// was read, so two concurrent changes cannot both succeed.
func (s *orderService) transition(ctx context.Context, order *model.Order, next model.OrderStatus) (*model.Order, error) {
	from := order.Status
	if !from.CanTransitionTo(next) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move order from %s to %s", from, next))
	}

	moved, err := s.orderRepo.UpdateStatus(ctx, order.ID, from, next)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !moved {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition, "order status changed concurrently")
	}

	s.metrics.StatusChanged(ctx, from, next)
	slog.InfoContext(ctx, "order status changed", "order_id", order.ID, "from", from, "to", next)

	order.Status = next
	return order, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
