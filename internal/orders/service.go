package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/internal/commission"
	"github.com/trefleapp/trefle-backend/pkg/config"
	dbpkg "github.com/trefleapp/trefle-backend/pkg/db"
	"github.com/trefleapp/trefle-backend/pkg/db/models"
	"github.com/trefleapp/trefle-backend/pkg/enums"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	"github.com/trefleapp/trefle-backend/pkg/moneroo"
	"github.com/trefleapp/trefle-backend/pkg/outbox"
	"github.com/trefleapp/trefle-backend/pkg/outbox/payloads"
	"github.com/trefleapp/trefle-backend/pkg/types"
)

const orderNumberRetries = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StockLedger adjusts reserved and available stock inside the caller's
// transaction.
type StockLedger interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	CommitReservation(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// CommissionFinalizer quotes commission at purchase time and settles it
// when the order is delivered.
type CommissionFinalizer interface {
	Quote(totalAmount int64, tier enums.VendorTier) int64
	FinalizeDelivery(ctx context.Context, tx *gorm.DB, order *models.Order) (*commission.DeliveryResult, error)
}

// PaymentGateway is the outbound payment-processor surface.
type PaymentGateway interface {
	InitializePayment(ctx context.Context, params moneroo.InitializePaymentParams) (*moneroo.PaymentSession, error)
	CreateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*moneroo.Refund, error)
}

// CreateOrderItemInput is one requested line.
type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CustomerContact is forwarded to the payment processor for checkout.
type CustomerContact struct {
	Email string
	Name  string
	Phone string
}

// CreateOrderInput carries everything needed to open an order.
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	Items           []CreateOrderItemInput
	ShippingAddress types.Address
	BillingAddress  *types.Address
	Notes           *string
	Contact         CustomerContact
}

// CreateResult is the order plus the processor checkout handle.
type CreateResult struct {
	Order       *models.Order
	CheckoutURL string
}

// GetInput scopes a read to the requesting actor.
type GetInput struct {
	OrderID       uuid.UUID
	ActorUserID   uuid.UUID
	ActorRole     enums.UserRole
	ActorVendorID *uuid.UUID
}

// VendorStatusInput is a vendor-driven lifecycle move.
type VendorStatusInput struct {
	OrderID     uuid.UUID
	Target      enums.OrderStatus
	ActorUserID uuid.UUID
	VendorID    uuid.UUID
}

// CancelInput carries a customer or admin cancellation.
type CancelInput struct {
	OrderID     uuid.UUID
	Reason      string
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
	CustomerID  uuid.UUID
}

// RefundInput requests a processor refund and settles the order. Vendors
// may only refund their own orders; ActorVendorID scopes that check.
type RefundInput struct {
	OrderID       uuid.UUID
	Reason        string
	ActorUserID   uuid.UUID
	ActorRole     enums.UserRole
	ActorVendorID *uuid.UUID
}

// ReviewInput is a customer review of a delivered order.
type ReviewInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Rating     int
	Title      string
	Content    string
}

// VendorStats summarizes a vendor's order book and commission standing.
// NextTier is nil at the top of the ladder.
type VendorStats struct {
	TotalOrders       int64                       `json:"total_orders"`
	OrdersByStatus    map[enums.OrderStatus]int64 `json:"orders_by_status"`
	DeliveredOrders   int64                       `json:"delivered_orders"`
	TotalSales        int64                       `json:"total_sales"`
	TotalRevenue      int64                       `json:"total_revenue"`
	Tier              enums.VendorTier            `json:"tier"`
	CommissionRateBps int64                       `json:"commission_rate_bps"`
	NextTier          *enums.VendorTier           `json:"next_tier,omitempty"`
	SalesToNextTier   int64                       `json:"sales_to_next_tier,omitempty"`
}

// Service drives the order lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateResult, error)
	Get(ctx context.Context, input GetInput) (*models.Order, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params ListParams) ([]models.Order, error)
	ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params ListParams) ([]models.Order, error)
	VendorUpdateStatus(ctx context.Context, input VendorStatusInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
	Refund(ctx context.Context, input RefundInput) (*models.Order, error)
	AddReview(ctx context.Context, input ReviewInput) (*models.OrderReview, error)
	VendorStats(ctx context.Context, vendorID uuid.UUID) (*VendorStats, error)

	// Webhook-driven transitions. They run inside the ingestor's
	// transaction so the event log and the order move together.
	ConfirmPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	FailPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
	ApplyCancellation(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
	ApplyRefund(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	ApplyDispute(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	ApplyDelivery(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	stock      StockLedger
	commission CommissionFinalizer
	gateway    PaymentGateway
	pricer     *Pricer
	cfg        config.PricingConfig
	moneroo    config.MonerooConfig
	logg       *logger.Logger
}

// NewService wires the order service with its collaborators. The logger is
// optional; without it gateway refund failures go unreported.
func NewService(
	repo Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	stock StockLedger,
	commission CommissionFinalizer,
	gateway PaymentGateway,
	pricingCfg config.PricingConfig,
	monerooCfg config.MonerooConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if commission == nil {
		return nil, fmt.Errorf("commission finalizer required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     outboxSvc,
		stock:      stock,
		commission: commission,
		gateway:    gateway,
		pricer:     NewPricer(pricingCfg),
		cfg:        pricingCfg,
		moneroo:    monerooCfg,
		logg:       logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil || item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "each item needs a product and a positive quantity")
		}
	}
	if missing := input.ShippingAddress.Validate(); missing != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").
			WithDetails(map[string]any{"missing_field": missing})
	}
	if input.BillingAddress != nil {
		if missing := input.BillingAddress.Validate(); missing != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing address incomplete").
				WithDetails(map[string]any{"missing_field": missing})
		}
	}

	quantities := make(map[uuid.UUID]int, len(input.Items))
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if _, seen := quantities[item.ProductID]; seen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order items")
		}
		quantities[item.ProductID] = item.Quantity
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.repo.FindProducts(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(products) != len(productIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more products not found")
	}

	vendorID := products[0].VendorID
	currency := products[0].Currency
	totalWeight := 0
	var subtotal int64
	for _, product := range products {
		if product.Status != enums.ProductStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not purchasable").
				WithDetails(map[string]any{"product_id": product.ID.String()})
		}
		if product.VendorID != vendorID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "all items must belong to one vendor")
		}
		if product.Currency != currency {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "items priced in mixed currencies")
		}
		qty := quantities[product.ID]
		subtotal += product.Price * int64(qty)
		totalWeight += product.WeightGrams * qty
	}

	tax := s.pricer.Tax(subtotal)
	shipping := s.pricer.Shipping(totalWeight, input.ShippingAddress.Country)
	total := subtotal + tax + shipping

	vendor, err := s.repo.FindVendor(ctx, vendorID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	order := &models.Order{
		ID:             uuid.New(),
		CustomerID:     input.CustomerID,
		VendorID:       vendorID,
		Status:         enums.OrderStatusPending,
		PaymentStatus:  enums.PaymentStatusPending,
		Currency:       currency,
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingAmount: shipping,
		TotalAmount:    total,
		// locked to the vendor's tier at purchase time; delivery settles
		// this amount even if the tier moves before then
		CommissionAmount: s.commission.Quote(total, vendor.Tier),
		ShippingAddress:  input.ShippingAddress,
		BillingAddress:   input.BillingAddress,
		Notes:            input.Notes,
	}
	for _, product := range products {
		qty := quantities[product.ID]
		item := models.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			ProductID:  product.ID,
			Quantity:   qty,
			UnitPrice:  product.Price,
			TotalPrice: product.Price * int64(qty),
			ProductSnapshot: types.ProductSnapshot{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
			},
			StockReserved: product.TrackInventory,
		}
		if product.ImageURL != nil {
			item.ProductSnapshot.ImageURL = *product.ImageURL
		}
		order.Items = append(order.Items, item)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for _, product := range products {
			if !product.TrackInventory {
				continue
			}
			if err := s.stock.Reserve(ctx, tx, product.ID, quantities[product.ID]); err != nil {
				return err
			}
		}

		var createErr error
		for attempt := 0; attempt < orderNumberRetries; attempt++ {
			order.OrderNumber = NewOrderNumber(s.cfg.OrderNumberPrefix, time.Now())
			createErr = repo.Create(ctx, order)
			if createErr == nil {
				break
			}
			if !dbpkg.IsUniqueViolation(createErr, "ux_orders_order_number") {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create order")
			}
		}
		if createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create order")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.CustomerID, nil, enums.UserRoleCustomer),
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				VendorID:    order.VendorID,
				Currency:    order.Currency,
				TotalAmount: order.TotalAmount,
				ItemCount:   len(order.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.InitializePayment(ctx, moneroo.InitializePaymentParams{
		Amount:   order.TotalAmount,
		Currency: string(order.Currency),
		Customer: moneroo.Customer{
			Email: input.Contact.Email,
			Name:  input.Contact.Name,
			Phone: input.Contact.Phone,
		},
		Metadata: map[string]string{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
		},
		RedirectURL: s.moneroo.RedirectURL,
		CancelURL:   s.moneroo.CancelURL,
		WebhookURL:  s.moneroo.WebhookURL,
	})
	if err != nil {
		// the order stays pending; the webhook pipeline never sees it
		// without a payment reference, so nothing can move it forward
		return nil, err
	}
	if err := s.repo.SetPaymentReference(ctx, order.ID, session.PaymentID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store payment reference")
	}
	reference := session.PaymentID
	order.PaymentReference = &reference

	return &CreateResult{Order: order, CheckoutURL: session.CheckoutURL}, nil
}

func (s *service) Get(ctx context.Context, input GetInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, s.repo, input.OrderID)
	if err != nil {
		return nil, err
	}

	switch input.ActorRole {
	case enums.UserRoleAdmin:
	case enums.UserRoleVendor:
		if input.ActorVendorID == nil || order.VendorID != *input.ActorVendorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
	default:
		if order.CustomerID != input.ActorUserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
	}
	return order, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params ListParams) ([]models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orders, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return orders, nil
}

func (s *service) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params ListParams) ([]models.Order, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	orders, err := s.repo.ListByVendor(ctx, vendorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor orders")
	}
	return orders, nil
}

func (s *service) VendorUpdateStatus(ctx context.Context, input VendorStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	if !VendorMayRequest(input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status not vendor-drivable").
			WithDetails(map[string]any{"status": string(input.Target)})
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.VendorID != input.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
		actor := buildActor(input.ActorUserID, &input.VendorID, enums.UserRoleVendor)
		if err := s.transition(ctx, tx, order, input.Target, actor, ""); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	reason := strings.TrimSpace(input.Reason)
	if max := s.cfg.CancellationReasonMax; max > 0 && len(reason) > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason too long")
	}

	var updated *models.Order
	wasPaid := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if input.ActorRole != enums.UserRoleAdmin && order.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		wasPaid = order.PaymentStatus == enums.PaymentStatusPaid
		actor := buildActor(input.ActorUserID, nil, input.ActorRole)
		if err := s.transition(ctx, tx, order, enums.OrderStatusCancelled, actor, reason); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasPaid {
		s.refundCapturedPayment(ctx, updated, reason)
	}
	return updated, nil
}

func (s *service) Refund(ctx context.Context, input RefundInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if input.ActorRole == enums.UserRoleVendor {
			if input.ActorVendorID == nil || order.VendorID != *input.ActorVendorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
			}
		}
		if order.PaymentStatus != enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no captured payment to refund")
		}
		if order.PaymentReference == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no payment reference")
		}
		actor := buildActor(input.ActorUserID, input.ActorVendorID, input.ActorRole)
		if err := s.transition(ctx, tx, order, enums.OrderStatusRefunded, actor, input.Reason); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refundCapturedPayment(ctx, updated, input.Reason)
	return updated, nil
}

// refundCapturedPayment asks the processor to return captured funds after
// the local transition has committed. A gateway failure is logged for
// operators rather than surfaced; the money side converges through the
// provider's refund webhook or a manual retry.
func (s *service) refundCapturedPayment(ctx context.Context, order *models.Order, reason string) {
	if order == nil || order.PaymentReference == nil {
		return
	}
	if _, err := s.gateway.CreateRefund(ctx, *order.PaymentReference, order.TotalAmount, reason); err != nil && s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_id":          order.ID.String(),
			"payment_reference": *order.PaymentReference,
		})
		s.logg.Error(ctx, "gateway refund failed", err)
	}
}

func (s *service) AddReview(ctx context.Context, input ReviewInput) (*models.OrderReview, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review title required")
	}
	if max := s.cfg.ReviewTitleMaxLen; max > 0 && len(title) > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review title too long")
	}
	if max := s.cfg.ReviewContentMaxLen; max > 0 && len(content) > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review content too long")
	}

	order, err := s.loadOrder(ctx, s.repo, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be reviewed")
	}

	review := &models.OrderReview{
		ID:         uuid.New(),
		OrderID:    order.ID,
		CustomerID: input.CustomerID,
		VendorID:   order.VendorID,
		Rating:     input.Rating,
		Title:      title,
		Content:    content,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateReview(ctx, review); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_order_reviews_order_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}
		if err := repo.IncrementVendorRating(ctx, order.VendorID, input.Rating); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "roll review into vendor ratings")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *service) VendorStats(ctx context.Context, vendorID uuid.UUID) (*VendorStats, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	vendor, err := s.repo.FindVendor(ctx, vendorID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	rows, err := s.repo.CountByStatus(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate vendor orders")
	}

	stats := &VendorStats{
		OrdersByStatus:    make(map[enums.OrderStatus]int64, len(rows)),
		TotalSales:        vendor.TotalSales,
		TotalRevenue:      vendor.TotalRevenue,
		Tier:              vendor.Tier,
		CommissionRateBps: commission.RateBps(vendor.Tier),
	}
	for _, row := range rows {
		stats.OrdersByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
		if row.Status == enums.OrderStatusDelivered {
			stats.DeliveredOrders = row.Count
		}
	}
	if next, threshold, ok := commission.NextThreshold(vendor.Tier, vendor.TotalSales); ok {
		stats.NextTier = &next
		stats.SalesToNextTier = threshold - vendor.TotalSales
	}
	return stats, nil
}

func (s *service) ConfirmPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.webhookTransition(ctx, tx, orderID, enums.OrderStatusConfirmed, "")
}

func (s *service) FailPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error {
	return s.webhookTransition(ctx, tx, orderID, enums.OrderStatusPaymentFailed, reason)
}

func (s *service) ApplyCancellation(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error {
	return s.webhookTransition(ctx, tx, orderID, enums.OrderStatusCancelled, reason)
}

func (s *service) ApplyRefund(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.webhookTransition(ctx, tx, orderID, enums.OrderStatusRefunded, "")
}

func (s *service) ApplyDispute(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.webhookTransition(ctx, tx, orderID, enums.OrderStatusDisputed, "")
}

func (s *service) ApplyDelivery(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.webhookTransition(ctx, tx, orderID, enums.OrderStatusDelivered, "")
}

func (s *service) webhookTransition(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, target enums.OrderStatus, reason string) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	repo := s.repo.WithTx(tx)
	order, err := s.loadOrder(ctx, repo, orderID)
	if err != nil {
		return err
	}
	return s.transition(ctx, tx, order, target, nil, reason)
}

// transition applies one lifecycle move with its side effects, all within
// the supplied transaction. The order argument is mutated to the new state.
func (s *service) transition(ctx context.Context, tx *gorm.DB, order *models.Order, to enums.OrderStatus, actor *outbox.ActorRef, reason string) error {
	if err := ValidateTransition(order.Status, to); err != nil {
		return err
	}

	now := time.Now()
	from := order.Status
	updates := map[string]any{}
	events := make([]outbox.DomainEvent, 0, 2)

	switch to {
	case enums.OrderStatusConfirmed:
		updates["confirmed_at"] = now
		updates["payment_status"] = enums.PaymentStatusPaid
		order.ConfirmedAt = &now
		order.PaymentStatus = enums.PaymentStatusPaid
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.OrderPaidEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				CustomerID:       order.CustomerID,
				VendorID:         order.VendorID,
				PaymentReference: derefString(order.PaymentReference),
				TotalAmount:      order.TotalAmount,
				PaidAt:           now,
			},
		})

	case enums.OrderStatusPaymentFailed:
		updates["payment_status"] = enums.PaymentStatusFailed
		order.PaymentStatus = enums.PaymentStatusFailed
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventPaymentFailed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.PaymentFailedEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				CustomerID:       order.CustomerID,
				PaymentReference: derefString(order.PaymentReference),
				Reason:           reason,
			},
		})

	case enums.OrderStatusShipped:
		updates["shipped_at"] = now
		order.ShippedAt = &now
		for _, item := range order.Items {
			if !item.StockReserved {
				continue
			}
			if err := s.stock.CommitReservation(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.WithTx(tx).MarkItemsReleased(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear reservation flags")
		}

	case enums.OrderStatusDelivered:
		updates["delivered_at"] = now
		order.DeliveredAt = &now
		result, err := s.commission.FinalizeDelivery(ctx, tx, order)
		if err != nil {
			return err
		}
		updates["commission_amount"] = result.CommissionAmount
		order.CommissionAmount = result.CommissionAmount
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.OrderDeliveredEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				CustomerID:       order.CustomerID,
				VendorID:         order.VendorID,
				TotalAmount:      order.TotalAmount,
				CommissionAmount: result.CommissionAmount,
				CommissionTier:   result.PreviousTier,
				DeliveredAt:      now,
			},
		})

	case enums.OrderStatusCancelled:
		updates["cancelled_at"] = now
		order.CancelledAt = &now
		if reason != "" {
			updates["cancellation_reason"] = reason
			order.CancellationReason = &reason
		}
		switch order.PaymentStatus {
		case enums.PaymentStatusPending:
			updates["payment_status"] = enums.PaymentStatusCancelled
			order.PaymentStatus = enums.PaymentStatusCancelled
		case enums.PaymentStatusPaid:
			// captured funds go back to the customer; the caller issues
			// the gateway refund after this transaction commits
			updates["payment_status"] = enums.PaymentStatusRefunded
			order.PaymentStatus = enums.PaymentStatusRefunded
		}
		if err := s.returnReservedStock(ctx, tx, order); err != nil {
			return err
		}
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.OrderCanceledEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				VendorID:    order.VendorID,
				CanceledAt:  now,
				Reason:      reason,
			},
		})

	case enums.OrderStatusRefunded:
		updates["refunded_at"] = now
		updates["payment_status"] = enums.PaymentStatusRefunded
		order.RefundedAt = &now
		order.PaymentStatus = enums.PaymentStatusRefunded
		if from == enums.OrderStatusShipped {
			// goods were in transit; returned units go back to stock
			for _, item := range order.Items {
				if err := s.stock.Restock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		} else if err := s.returnReservedStock(ctx, tx, order); err != nil {
			return err
		}
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventOrderRefunded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.OrderRefundedEvent{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				CustomerID:   order.CustomerID,
				VendorID:     order.VendorID,
				RefundAmount: order.TotalAmount,
				RefundedAt:   now,
			},
		})

	case enums.OrderStatusDisputed:
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventOrderDisputed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.OrderDisputedEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				VendorID:         order.VendorID,
				PaymentReference: derefString(order.PaymentReference),
				DisputedAt:       now,
			},
		})
	}

	changed, err := s.repo.WithTx(tx).UpdateStatus(ctx, order.ID, from, to, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !changed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently").
			WithDetails(map[string]any{"expected_status": string(from)})
	}
	order.Status = to

	events = append(events, outbox.DomainEvent{
		EventType:     enums.EventOrderStateChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         actor,
		Data: payloads.OrderStateChangedEvent{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedAt:  now,
		},
	})
	if ShouldNotify(to) {
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventNotificationRequested,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.NotificationRequestedEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				VendorID:   order.VendorID,
				Type:       "order_" + string(to),
			},
		})
	}
	for _, event := range events {
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit domain event")
		}
	}
	return nil
}

// returnReservedStock releases still-reserved units and clears the flags.
func (s *service) returnReservedStock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	released := false
	for _, item := range order.Items {
		if !item.StockReserved {
			continue
		}
		if err := s.stock.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		released = true
	}
	if !released {
		return nil
	}
	if err := s.repo.WithTx(tx).MarkItemsReleased(ctx, order.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear reservation flags")
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func buildActor(userID uuid.UUID, vendorID *uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID:   userID,
		VendorID: vendorID,
		Role:     string(role),
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
