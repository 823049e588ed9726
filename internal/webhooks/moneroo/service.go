package moneroowebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/internal/orders"
	"github.com/trefleapp/trefle-backend/pkg/db/models"
	"github.com/trefleapp/trefle-backend/pkg/enums"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	"github.com/trefleapp/trefle-backend/pkg/metrics"
	"github.com/trefleapp/trefle-backend/pkg/moneroo"
)

const source = "moneroo"

// Moneroo event types this service applies to the order lifecycle.
const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventPaymentCancelled = "payment.cancelled"
	EventRefundProcessed  = "refund.processed"
	EventDisputeCreated   = "dispute.created"
)

type orderLifecycle interface {
	ConfirmPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	FailPayment(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
	ApplyCancellation(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason string) error
	ApplyRefund(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	ApplyDispute(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Event is the provider's webhook envelope.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

// EventData carries the payment the event refers to.
type EventData struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Reason   string            `json:"reason"`
	Metadata map[string]string `json:"metadata"`
}

// Result reports how an inbound event was handled.
type Result struct {
	Status    enums.WebhookEventStatus
	Duplicate bool
	OrderID   *uuid.UUID
}

type ServiceParams struct {
	Repo              Repository
	OrdersRepo        orders.Repository
	Orders            orderLifecycle
	TransactionRunner txRunner
	Guard             *IdempotencyGuard
	Metrics           *metrics.WebhookMetrics
	Logger            *logger.Logger
	WebhookSecret     string
}

// Service verifies, deduplicates and applies payment-provider webhooks.
type Service struct {
	repo       Repository
	ordersRepo orders.Repository
	orders     orderLifecycle
	txRunner   txRunner
	guard      *IdempotencyGuard
	metrics    *metrics.WebhookMetrics
	logg       *logger.Logger
	secret     string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook repo required")
	}
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order lifecycle required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.WebhookSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook secret required")
	}
	if params.Metrics == nil {
		params.Metrics = metrics.NewWebhookMetrics(nil)
	}
	return &Service{
		repo:       params.Repo,
		ordersRepo: params.OrdersRepo,
		orders:     params.Orders,
		txRunner:   params.TransactionRunner,
		guard:      params.Guard,
		metrics:    params.Metrics,
		logg:       params.Logger,
		secret:     params.WebhookSecret,
	}, nil
}

// Process handles one raw webhook delivery. The provider retries on error,
// so every path that must not be retried returns nil with a recorded
// outcome instead.
func (s *Service) Process(ctx context.Context, signature string, body []byte) (*Result, error) {
	start := time.Now()

	if !moneroo.VerifySignature(s.secret, body, signature) {
		s.metrics.IncSignatureFailure()
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch")
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook payload")
	}
	if event.Event == "" || event.Data.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook event type and payment id required")
	}
	defer func() {
		s.metrics.ObserveDuration(event.Event, time.Since(start))
	}()

	key := event.Event + ":" + event.Data.ID

	if !s.supported(event.Event) {
		result, err := s.recordStandalone(ctx, &event, key, body, enums.WebhookEventStatusIgnored, "unsupported event type", nil)
		if err != nil {
			return nil, err
		}
		s.metrics.IncReceived(event.Event, string(result.Status))
		return result, nil
	}

	if duplicate, result := s.alreadyProcessed(ctx, key); duplicate {
		s.metrics.IncReceived(event.Event, "duplicate")
		return result, nil
	}

	result, err := s.apply(ctx, &event, key, body)
	if err != nil {
		// clear the fast-path mark so the provider's retry reprocesses
		if s.guard != nil {
			if delErr := s.guard.Delete(ctx, key); delErr != nil && s.logg != nil {
				s.logg.Warn(ctx, "release webhook idempotency key: "+delErr.Error())
			}
		}
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
			// keep a trace of the miss; the non-2xx response makes the
			// provider redeliver once the order exists
			if _, recErr := s.recordStandalone(ctx, &event, key, body, enums.WebhookEventStatusError, appErr.Error(), nil); recErr != nil && s.logg != nil {
				s.logg.Warn(ctx, "record webhook outcome: "+recErr.Error())
			}
		}
		s.metrics.IncReceived(event.Event, string(enums.WebhookEventStatusError))
		return nil, err
	}
	s.metrics.IncReceived(event.Event, string(result.Status))
	return result, nil
}

func (s *Service) supported(eventType string) bool {
	switch eventType {
	case EventPaymentCompleted, EventPaymentFailed, EventPaymentCancelled, EventRefundProcessed, EventDisputeCreated:
		return true
	}
	return false
}

// alreadyProcessed marks the Redis fast path and then consults the durable
// log. The log is authoritative: dedupe must hold even when Redis is down
// or the key expired. An event recorded as error is deliberately not
// deduplicated; the provider's retry gets another attempt.
func (s *Service) alreadyProcessed(ctx context.Context, key string) (bool, *Result) {
	if s.guard != nil {
		if _, err := s.guard.CheckAndMark(ctx, key); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "webhook idempotency fast path unavailable: "+err.Error())
		}
	}

	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil || existing == nil {
		return false, nil
	}
	if existing.Status == enums.WebhookEventStatusError {
		return false, nil
	}
	return true, &Result{Status: existing.Status, Duplicate: true, OrderID: existing.OrderID}
}

func (s *Service) apply(ctx context.Context, event *Event, key string, body []byte) (*Result, error) {
	var result *Result
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)

		order, err := ordersRepo.FindByPaymentReference(ctx, event.Data.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found for payment reference")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order for webhook")
		}

		if err := s.route(ctx, tx, event, order.ID); err != nil {
			appErr := pkgerrors.As(err)
			if appErr != nil && appErr.Code() == pkgerrors.CodeStateConflict {
				// terminal or out-of-order delivery; record and stop retrying
				if recErr := s.record(ctx, tx, event, key, body, enums.WebhookEventStatusIgnored, appErr.Error(), &order.ID); recErr != nil {
					return recErr
				}
				result = &Result{Status: enums.WebhookEventStatusIgnored, OrderID: &order.ID}
				return nil
			}
			return err
		}

		if err := s.record(ctx, tx, event, key, body, enums.WebhookEventStatusSuccess, "", &order.ID); err != nil {
			return err
		}
		result = &Result{Status: enums.WebhookEventStatusSuccess, OrderID: &order.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) route(ctx context.Context, tx *gorm.DB, event *Event, orderID uuid.UUID) error {
	switch event.Event {
	case EventPaymentCompleted:
		return s.orders.ConfirmPayment(ctx, tx, orderID)
	case EventPaymentFailed:
		return s.orders.FailPayment(ctx, tx, orderID, event.Data.Reason)
	case EventPaymentCancelled:
		return s.orders.ApplyCancellation(ctx, tx, orderID, event.Data.Reason)
	case EventRefundProcessed:
		return s.orders.ApplyRefund(ctx, tx, orderID)
	case EventDisputeCreated:
		return s.orders.ApplyDispute(ctx, tx, orderID)
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "unroutable webhook event")
}

// record writes or refreshes the durable log row inside the transaction.
// An earlier error row for the same key is reused so retries converge on
// one row per delivery.
func (s *Service) record(ctx context.Context, tx *gorm.DB, event *Event, key string, body []byte, status enums.WebhookEventStatus, outcome string, orderID *uuid.UUID) error {
	repo := s.repo.WithTx(tx)

	existing, err := repo.FindByKey(ctx, key)
	if err != nil && err != gorm.ErrRecordNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load webhook event log")
	}

	if existing != nil {
		// a settled success row is final; late redeliveries must not
		// rewrite it as ignored or error
		if existing.Status == enums.WebhookEventStatusSuccess && status != enums.WebhookEventStatusSuccess {
			return nil
		}
		existing.Status = status
		existing.Result = outcome
		existing.OrderID = orderID
		existing.Payload = body
		if err := repo.UpdateOutcome(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update webhook event log")
		}
		return nil
	}

	reference := event.Data.ID
	row := &models.WebhookEvent{
		ID:               uuid.New(),
		Source:           source,
		EventType:        event.Event,
		IdempotencyKey:   key,
		PaymentReference: &reference,
		OrderID:          orderID,
		Payload:          body,
		Status:           status,
		Result:           outcome,
	}
	if err := repo.Create(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append webhook event log")
	}
	return nil
}

// recordStandalone logs an event outside any lifecycle transaction.
func (s *Service) recordStandalone(ctx context.Context, event *Event, key string, body []byte, status enums.WebhookEventStatus, outcome string, orderID *uuid.UUID) (*Result, error) {
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.record(ctx, tx, event, key, body, status, outcome, orderID)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Status: status}, nil
}
