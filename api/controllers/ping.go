package controllers

import (
	"net/http"

	"github.com/ayoubterari/entrecoiffeur-backend/api/middleware"
	"github.com/ayoubterari/entrecoiffeur-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if seller := middleware.SellerIDFromContext(r.Context()); seller != "" {
			payload["seller_id"] = seller
		}
		responses.WriteSuccess(w, payload)
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "admin", "status": "ok"})
	}
}
