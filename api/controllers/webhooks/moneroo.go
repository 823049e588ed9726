package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/trefleapp/trefle-backend/api/responses"
	moneroowebhook "github.com/trefleapp/trefle-backend/internal/webhooks/moneroo"
	"github.com/trefleapp/trefle-backend/pkg/enums"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
	"github.com/trefleapp/trefle-backend/pkg/logger"
)

const monerooSignatureHeader = "X-Moneroo-Signature"

type MonerooWebhookService interface {
	Process(ctx context.Context, signature string, body []byte) (*moneroowebhook.Result, error)
}

// MonerooWebhook receives payment lifecycle events from the processor.
// The service owns verification, dedupe and application; anything it
// reports as applied or ignored gets a 200 so the provider stops retrying.
func MonerooWebhook(svc MonerooWebhookService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		result, err := svc.Process(ctx, r.Header.Get(monerooSignatureHeader), body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload := map[string]any{
			"message": webhookMessage(result),
		}
		if result.OrderID != nil {
			payload["order_id"] = result.OrderID.String()
		}
		responses.WriteSuccess(w, payload)
	}
}

func webhookMessage(result *moneroowebhook.Result) string {
	switch {
	case result == nil:
		return "accepted"
	case result.Duplicate:
		return "already processed"
	case result.Status == enums.WebhookEventStatusSuccess:
		return "applied"
	case result.Status == enums.WebhookEventStatusIgnored:
		return "ignored"
	default:
		return "accepted"
	}
}
