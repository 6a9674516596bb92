package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/respond"
	"github.com/kevinaaaquil/novels/service"
)

type ContactHandler struct {
	Contact *service.Contact
}

// Submit accepts a contact form message. It is stored before mailing, so a
// mail failure still answers 202.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, apperr.ValidationError("invalid json"))
		return
	}
	if _, err := h.Contact.Submit(r.Context(), req); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Message(w, http.StatusAccepted, "Message received")
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB Pinger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
