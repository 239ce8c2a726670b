package controllers

import (
	"net/http"

	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/config"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/db"
	pkgerrors "github.com/ayoubterari/entrecoiffeur-backend/pkg/errors"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/logger"
	"github.com/ayoubterari/entrecoiffeur-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EntreCoiffeur-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the database and Redis both answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EntreCoiffeur-Env", cfg.App.Env)

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
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
