package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/middleware"
	"github.com/kevinaaaquil/novels/respond"
	"github.com/kevinaaaquil/novels/service"
)

// UsersHandler serves the signed-in user's own records.
type UsersHandler struct {
	Accounts *service.Accounts
	Linkage  *service.Linkage
}

func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	user, err := h.Accounts.Profile(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// Novels lists the novels the caller created, in creation order.
func (h *UsersHandler) Novels(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	novels, err := h.Linkage.OwnedNovels(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, novels)
}

func (h *UsersHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	novels, err := h.Linkage.History(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, novels)
}
