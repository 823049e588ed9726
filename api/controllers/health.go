package controllers

import (
	"net/http"

	"github.com/trefleapp/trefle-backend/api/responses"
	"github.com/trefleapp/trefle-backend/pkg/config"
	"github.com/trefleapp/trefle-backend/pkg/db"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	"github.com/trefleapp/trefle-backend/pkg/redis"
)

// Healthz reports liveness plus the reachability of the service's hard
// dependencies. Nil pingers are skipped so lighter deployments still pass.
func Healthz(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Trefle-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
