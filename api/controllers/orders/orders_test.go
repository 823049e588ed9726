package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/api/middleware"
	internalorders "github.com/trefleapp/trefle-backend/internal/orders"
	"github.com/trefleapp/trefle-backend/pkg/db/models"
	"github.com/trefleapp/trefle-backend/pkg/enums"
)

type stubOrdersService struct {
	create       func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateResult, error)
	get          func(ctx context.Context, input internalorders.GetInput) (*models.Order, error)
	listCustomer func(ctx context.Context, customerID uuid.UUID, params internalorders.ListParams) ([]models.Order, error)
	listVendor   func(ctx context.Context, vendorID uuid.UUID, params internalorders.ListParams) ([]models.Order, error)
	updateStatus func(ctx context.Context, input internalorders.VendorStatusInput) (*models.Order, error)
	cancel       func(ctx context.Context, input internalorders.CancelInput) (*models.Order, error)
	refund       func(ctx context.Context, input internalorders.RefundInput) (*models.Order, error)
	addReview    func(ctx context.Context, input internalorders.ReviewInput) (*models.OrderReview, error)
	vendorStats  func(ctx context.Context, vendorID uuid.UUID) (*internalorders.VendorStats, error)
}

func (s *stubOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateResult, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	return &internalorders.CreateResult{Order: &models.Order{}}, nil
}

func (s *stubOrdersService) Get(ctx context.Context, input internalorders.GetInput) (*models.Order, error) {
	if s.get != nil {
		return s.get(ctx, input)
	}
	return &models.Order{}, nil
}

func (s *stubOrdersService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params internalorders.ListParams) ([]models.Order, error) {
	if s.listCustomer != nil {
		return s.listCustomer(ctx, customerID, params)
	}
	return nil, nil
}

func (s *stubOrdersService) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, params internalorders.ListParams) ([]models.Order, error) {
	if s.listVendor != nil {
		return s.listVendor(ctx, vendorID, params)
	}
	return nil, nil
}

func (s *stubOrdersService) VendorUpdateStatus(ctx context.Context, input internalorders.VendorStatusInput) (*models.Order, error) {
	if s.updateStatus != nil {
		return s.updateStatus(ctx, input)
	}
	return &models.Order{}, nil
}

func (s *stubOrdersService) Cancel(ctx context.Context, input internalorders.CancelInput) (*models.Order, error) {
	if s.cancel != nil {
		return s.cancel(ctx, input)
	}
	return &models.Order{}, nil
}

func (s *stubOrdersService) Refund(ctx context.Context, input internalorders.RefundInput) (*models.Order, error) {
	if s.refund != nil {
		return s.refund(ctx, input)
	}
	return &models.Order{}, nil
}

func (s *stubOrdersService) AddReview(ctx context.Context, input internalorders.ReviewInput) (*models.OrderReview, error) {
	if s.addReview != nil {
		return s.addReview(ctx, input)
	}
	return &models.OrderReview{}, nil
}

func (s *stubOrdersService) VendorStats(ctx context.Context, vendorID uuid.UUID) (*internalorders.VendorStats, error) {
	if s.vendorStats != nil {
		return s.vendorStats(ctx, vendorID)
	}
	return &internalorders.VendorStats{}, nil
}

func (s *stubOrdersService) ConfirmPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return nil
}

func (s *stubOrdersService) FailPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error {
	return nil
}

func (s *stubOrdersService) ApplyCancellation(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error {
	return nil
}

func (s *stubOrdersService) ApplyRefund(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return nil
}

func (s *stubOrdersService) ApplyDispute(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return nil
}

func (s *stubOrdersService) ApplyDelivery(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return nil
}

func withActor(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withOrderParam(req *http.Request, orderID uuid.UUID) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestCreateOrderReturnsCheckoutURL(t *testing.T) {
	customerID := uuid.New()
	productID := uuid.New()

	svc := &stubOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateResult, error) {
			if input.CustomerID != customerID {
				t.Fatalf("unexpected customer id %s", input.CustomerID)
			}
			if len(input.Items) != 1 || input.Items[0].ProductID != productID || input.Items[0].Quantity != 2 {
				t.Fatalf("items not mapped: %+v", input.Items)
			}
			if input.ShippingAddress.City != "Douala" {
				t.Fatalf("shipping address not mapped: %+v", input.ShippingAddress)
			}
			if input.Contact.Email != "jo@example.com" {
				t.Fatalf("contact not mapped: %+v", input.Contact)
			}
			return &internalorders.CreateResult{
				Order:       &models.Order{ID: uuid.New(), CustomerID: customerID},
				CheckoutURL: "https://checkout.moneroo.io/pay_1",
			}, nil
		},
	}

	body := `{
		"items": [{"product_id": "` + productID.String() + `", "quantity": 2}],
		"shipping_address": {"line1": "12 Rue Joss", "city": "Douala", "country": "CM"},
		"customer_email": "jo@example.com"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = withActor(req, customerID, enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			CheckoutURL string `json:"checkout_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CheckoutURL != "https://checkout.moneroo.io/pay_1" {
		t.Fatalf("checkout url missing from response: %s", resp.Body.String())
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{
		"items": [],
		"shipping_address": {"line1": "12 Rue Joss", "city": "Douala", "country": "CM"},
		"customer_email": "jo@example.com"
	}`))
	req = withActor(req, uuid.New(), enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	Create(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateOrderRequiresAuthContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))

	resp := httptest.NewRecorder()
	Create(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestDetailForwardsActorScope(t *testing.T) {
	userID := uuid.New()
	vendorID := uuid.New()
	orderID := uuid.New()

	svc := &stubOrdersService{
		get: func(ctx context.Context, input internalorders.GetInput) (*models.Order, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order id %s", input.OrderID)
			}
			if input.ActorRole != enums.UserRoleVendor {
				t.Fatalf("unexpected role %s", input.ActorRole)
			}
			if input.ActorVendorID == nil || *input.ActorVendorID != vendorID {
				t.Fatalf("vendor id not forwarded")
			}
			return &models.Order{ID: orderID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil)
	req = withActor(req, userID, enums.UserRoleVendor)
	req = req.WithContext(middleware.WithVendorID(req.Context(), vendorID.String()))
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	Detail(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListParsesQueryFilters(t *testing.T) {
	customerID := uuid.New()

	svc := &stubOrdersService{
		listCustomer: func(ctx context.Context, gotCustomer uuid.UUID, params internalorders.ListParams) ([]models.Order, error) {
			if gotCustomer != customerID {
				t.Fatalf("unexpected customer id %s", gotCustomer)
			}
			if params.Limit != 5 || params.Offset != 10 {
				t.Fatalf("pagination not parsed: %+v", params)
			}
			if params.Status == nil || *params.Status != enums.OrderStatusShipped {
				t.Fatalf("status filter not parsed")
			}
			return []models.Order{{CustomerID: customerID}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5&offset=10&status=shipped", nil)
	req = withActor(req, customerID, enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=teleported", nil)
	req = withActor(req, uuid.New(), enums.UserRoleCustomer)

	resp := httptest.NewRecorder()
	List(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateStatusParsesTarget(t *testing.T) {
	userID := uuid.New()
	vendorID := uuid.New()
	orderID := uuid.New()

	svc := &stubOrdersService{
		updateStatus: func(ctx context.Context, input internalorders.VendorStatusInput) (*models.Order, error) {
			if input.Target != enums.OrderStatusShipped {
				t.Fatalf("unexpected target %s", input.Target)
			}
			if input.VendorID != vendorID {
				t.Fatalf("unexpected vendor id %s", input.VendorID)
			}
			return &models.Order{ID: orderID, Status: enums.OrderStatusShipped}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"shipped"}`))
	req = withActor(req, userID, enums.UserRoleVendor)
	req = req.WithContext(middleware.WithVendorID(req.Context(), vendorID.String()))
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	orderID := uuid.New()

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"warp"}`))
	req = withActor(req, uuid.New(), enums.UserRoleVendor)
	req = req.WithContext(middleware.WithVendorID(req.Context(), uuid.New().String()))
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	UpdateStatus(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateStatusRequiresVendorContext(t *testing.T) {
	orderID := uuid.New()

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"shipped"}`))
	req = withActor(req, uuid.New(), enums.UserRoleVendor)
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	UpdateStatus(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCancelMapsActor(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	svc := &stubOrdersService{
		cancel: func(ctx context.Context, input internalorders.CancelInput) (*models.Order, error) {
			if input.CustomerID != userID || input.ActorUserID != userID {
				t.Fatalf("actor not mapped: %+v", input)
			}
			if input.Reason != "changed my mind" {
				t.Fatalf("reason not forwarded: %q", input.Reason)
			}
			return &models.Order{ID: orderID, Status: enums.OrderStatusCancelled}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", strings.NewReader(`{"reason":"changed my mind"}`))
	req = withActor(req, userID, enums.UserRoleCustomer)
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	Cancel(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRefundRequiresReason(t *testing.T) {
	orderID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/refund", strings.NewReader(`{}`))
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	Refund(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRefundForwardsVendorScope(t *testing.T) {
	orderID := uuid.New()
	vendorID := uuid.New()

	svc := &stubOrdersService{
		refund: func(ctx context.Context, input internalorders.RefundInput) (*models.Order, error) {
			if input.ActorRole != enums.UserRoleVendor {
				t.Fatalf("unexpected role %s", input.ActorRole)
			}
			if input.ActorVendorID == nil || *input.ActorVendorID != vendorID {
				t.Fatalf("vendor scope not forwarded: %v", input.ActorVendorID)
			}
			return &models.Order{ID: orderID, Status: enums.OrderStatusRefunded}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/refund", strings.NewReader(`{"reason":"out of stock"}`))
	req = withActor(req, uuid.New(), enums.UserRoleVendor)
	req = req.WithContext(middleware.WithVendorID(req.Context(), vendorID.String()))
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	Refund(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateReviewValidatesRating(t *testing.T) {
	orderID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/reviews", strings.NewReader(`{"rating":6,"title":"Great"}`))
	req = withActor(req, uuid.New(), enums.UserRoleCustomer)
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	CreateReview(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateReviewReturnsCreated(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	svc := &stubOrdersService{
		addReview: func(ctx context.Context, input internalorders.ReviewInput) (*models.OrderReview, error) {
			if input.Rating != 5 || input.Title != "Great" {
				t.Fatalf("review not mapped: %+v", input)
			}
			return &models.OrderReview{ID: uuid.New(), OrderID: orderID, Rating: 5}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/reviews", strings.NewReader(`{"rating":5,"title":"Great"}`))
	req = withActor(req, userID, enums.UserRoleCustomer)
	req = withOrderParam(req, orderID)

	resp := httptest.NewRecorder()
	CreateReview(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestVendorStatsRequiresVendorContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/me/stats", nil)
	req = withActor(req, uuid.New(), enums.UserRoleVendor)

	resp := httptest.NewRecorder()
	VendorStats(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestVendorStatsReturnsAggregates(t *testing.T) {
	vendorID := uuid.New()

	svc := &stubOrdersService{
		vendorStats: func(ctx context.Context, gotVendor uuid.UUID) (*internalorders.VendorStats, error) {
			if gotVendor != vendorID {
				t.Fatalf("unexpected vendor id %s", gotVendor)
			}
			return &internalorders.VendorStats{
				TotalOrders:     3,
				DeliveredOrders: 1,
				OrdersByStatus: map[enums.OrderStatus]int64{
					enums.OrderStatusDelivered: 1,
					enums.OrderStatusShipped:   2,
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/me/stats", nil)
	req = withActor(req, uuid.New(), enums.UserRoleVendor)
	req = req.WithContext(middleware.WithVendorID(req.Context(), vendorID.String()))

	resp := httptest.NewRecorder()
	VendorStats(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalorders.VendorStats `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalOrders != 3 {
		t.Fatalf("stats not returned: %s", resp.Body.String())
	}
}
