package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/api/middleware"
	"github.com/trefleapp/trefle-backend/api/responses"
	"github.com/trefleapp/trefle-backend/api/validators"
	internalorders "github.com/trefleapp/trefle-backend/internal/orders"
	"github.com/trefleapp/trefle-backend/pkg/enums"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	"github.com/trefleapp/trefle-backend/pkg/types"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type addressPayload struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country" validate:"required"`
	Phone      string  `json:"phone,omitempty"`
}

func (a addressPayload) toAddress() types.Address {
	return types.Address{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

type createOrderItemPayload struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Items           []createOrderItemPayload `json:"items" validate:"required,min=1,dive"`
	ShippingAddress addressPayload           `json:"shipping_address" validate:"required"`
	BillingAddress  *addressPayload          `json:"billing_address,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
	CustomerEmail   string                   `json:"customer_email" validate:"required,email"`
	CustomerName    string                   `json:"customer_name,omitempty"`
	CustomerPhone   string                   `json:"customer_phone,omitempty"`
}

// Create opens a pending order for the authenticated customer and returns
// the processor checkout URL alongside it.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]internalorders.CreateOrderItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			items = append(items, internalorders.CreateOrderItemInput{
				ProductID: productID,
				Quantity:  item.Quantity,
			})
		}

		input := internalorders.CreateOrderInput{
			CustomerID:      actorID,
			Items:           items,
			ShippingAddress: payload.ShippingAddress.toAddress(),
			Notes:           payload.Notes,
			Contact: internalorders.CustomerContact{
				Email: payload.CustomerEmail,
				Name:  payload.CustomerName,
				Phone: payload.CustomerPhone,
			},
		}
		if payload.BillingAddress != nil {
			billing := payload.BillingAddress.toAddress()
			input.BillingAddress = &billing
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"order":        result.Order,
			"checkout_url": result.CheckoutURL,
		})
	}
}

// Detail returns the full order after the service verifies the actor may see it.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.GetInput{
			OrderID:     orderID,
			ActorUserID: actorID,
			ActorRole:   enums.UserRole(middleware.RoleFromContext(r.Context())),
		}
		if vendorID, ok := vendorIDFromContext(r); ok {
			input.ActorVendorID = &vendorID
		}

		order, err := svc.Get(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// List pages the authenticated customer's own orders.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCustomerOrders(r.Context(), actorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// VendorList pages the orders placed against the authenticated vendor.
func VendorList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		vendorID, ok := vendorIDFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing"))
			return
		}
		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListVendorOrders(r.Context(), vendorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves an order along the fulfillment path on behalf of the vendor.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID, ok := vendorIDFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing"))
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.VendorUpdateStatus(r.Context(), internalorders.VendorStatusInput{
			OrderID:     orderID,
			Target:      target,
			ActorUserID: actorID,
			VendorID:    vendorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type cancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Cancel lets the owning customer (or an admin) abandon an order.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), internalorders.CancelInput{
			OrderID:     orderID,
			Reason:      strings.TrimSpace(payload.Reason),
			ActorUserID: actorID,
			ActorRole:   enums.UserRole(middleware.RoleFromContext(r.Context())),
			CustomerID:  actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type refundOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Refund issues a processor refund and settles the order. The router
// admits vendors and admins; the service holds vendors to their own
// orders.
func Refund(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.RefundInput{
			OrderID:     orderID,
			Reason:      strings.TrimSpace(payload.Reason),
			ActorUserID: actorID,
			ActorRole:   enums.UserRole(middleware.RoleFromContext(r.Context())),
		}
		if vendorID, ok := vendorIDFromContext(r); ok {
			input.ActorVendorID = &vendorID
		}

		order, err := svc.Refund(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type createReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content,omitempty"`
}

// CreateReview records the customer's review of a delivered order.
func CreateReview(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, err := parseUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.AddReview(r.Context(), internalorders.ReviewInput{
			OrderID:    orderID,
			CustomerID: actorID,
			Rating:     payload.Rating,
			Title:      strings.TrimSpace(payload.Title),
			Content:    strings.TrimSpace(payload.Content),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

// VendorStats summarizes the authenticated vendor's order book.
func VendorStats(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		vendorID, ok := vendorIDFromContext(r)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing"))
			return
		}

		stats, err := svc.VendorStats(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func parseUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func vendorIDFromContext(r *http.Request) (uuid.UUID, bool) {
	raw := middleware.VendorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, false
	}
	vendorID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return vendorID, true
}

func listParamsFromQuery(r *http.Request) (internalorders.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
	if err != nil {
		return internalorders.ListParams{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		return internalorders.ListParams{}, err
	}

	params := internalorders.ListParams{Limit: limit, Offset: offset}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return internalorders.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		params.Status = &status
	}
	return params, nil
}
